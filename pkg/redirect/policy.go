// Package redirect maps an authenticated identity's privilege set to a
// post-login landing page.
package redirect

import (
	"errors"
	"net/url"

	"github.com/loginwatch/loginwatch/pkg/privilege"
)

// Landing page targets. These paths are a stable contract for any client.
const (
	ConsoleURL    = "/console.html"
	ManagementURL = "/management.html"
	HomepagePath  = "/homepage.html"
)

// ErrNoRecognizedPrivilege means the identity carries none of the privileges
// the policy recognizes. This signals a misconfigured privilege set and is
// never retried.
var ErrNoRecognizedPrivilege = errors.New("privilege set matches no redirect target")

// Decide returns the redirect target for the given login name and privilege
// set. WRITE strictly dominates MANAGER: an admin is never redirected to the
// manager console, regardless of what else is present. Identities with
// neither land on the homepage parameterized with their login name.
func Decide(loginName string, privs privilege.Set) (string, error) {
	switch {
	case privs.Has(privilege.Write):
		return ConsoleURL, nil
	case privs.Has(privilege.Manager):
		return ManagementURL, nil
	case len(privs) > 0:
		return HomepageURL(loginName), nil
	default:
		return "", ErrNoRecognizedPrivilege
	}
}

// HomepageURL builds the plain-user landing page URL. The login name is
// carried as a query parameter, URL-encoded.
func HomepageURL(loginName string) string {
	return HomepagePath + "?user=" + url.QueryEscape(loginName)
}
