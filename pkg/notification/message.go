package notification

import (
	"fmt"

	"golang.org/x/text/language"
)

// LoginNotificationSubject is the fixed subject of the new-device message.
const LoginNotificationSubject = "New Login Notification"

// loginLabels are the locale-specific labels of the three message lines.
type loginLabels struct {
	deviceDetails string
	location      string
	ip            string
}

// supportedLocales and loginCatalogs are parallel: the matcher index selects
// the catalog. English is first and therefore the fallback.
var supportedLocales = []language.Tag{
	language.English,
	language.German,
	language.French,
}

var loginCatalogs = []loginLabels{
	{deviceDetails: "Device details:", location: "Location:", ip: "IP address:"},
	{deviceDetails: "Geräteinformationen:", location: "Standort:", ip: "IP-Adresse:"},
	{deviceDetails: "Détails de l'appareil :", location: "Localisation :", ip: "Adresse IP :"},
}

var localeMatcher = language.NewMatcher(supportedLocales)

// NewLoginMessage composes the plain-text body of the new-device
// notification: three labelled lines for device details, location and IP, in
// that order. locale is a BCP 47 tag or Accept-Language value; unsupported
// locales fall back to English.
func NewLoginMessage(locale, deviceDetails, location, ip string) NotificationData {
	_, index := language.MatchStrings(localeMatcher, locale)
	labels := loginCatalogs[index]

	body := fmt.Sprintf("%s %s\n%s %s\n%s %s",
		labels.deviceDetails, deviceDetails,
		labels.location, location,
		labels.ip, ip)

	return NotificationData{
		Subject: LoginNotificationSubject,
		Body:    body,
	}
}
