// Package geo resolves client IP addresses to coarse location labels using a
// MaxMind city database.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Unknown is the location label used when an address cannot be resolved to a
// city, either because it is on the exemption list or because the database
// has no city for it.
const Unknown = "UNKNOWN"

// Locator resolves an IP address to a location label.
type Locator interface {
	Locate(ctx context.Context, ipAddress string) (string, error)
}

// cityReader is the slice of geoip2.Reader the locator needs.
type cityReader interface {
	City(net.IP) (*geoip2.City, error)
}

// MaxMindLocator resolves city-level locations from a MaxMind GeoIP2/GeoLite2
// database. Addresses on the exemption list resolve to Unknown without a
// database lookup; these are addresses known to have no reliable geolocation,
// such as private ranges used in testing.
type MaxMindLocator struct {
	reader cityReader
	db     *geoip2.Reader
	exempt map[string]struct{}
}

// NewMaxMindLocator opens the database at dbPath and returns a locator with
// the given exemption list. The caller owns the locator and must Close it.
func NewMaxMindLocator(dbPath string, exemptIPs []string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	l := newLocatorWithReader(db, exemptIPs)
	l.db = db
	return l, nil
}

func newLocatorWithReader(reader cityReader, exemptIPs []string) *MaxMindLocator {
	exempt := make(map[string]struct{}, len(exemptIPs))
	for _, ip := range exemptIPs {
		exempt[ip] = struct{}{}
	}
	return &MaxMindLocator{reader: reader, exempt: exempt}
}

// Close releases the underlying database.
func (l *MaxMindLocator) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Locate resolves ipAddress to a city name. Exempt addresses resolve to
// Unknown without touching the database. A database miss (no city, empty
// name) also resolves to Unknown; a lookup failure propagates to the caller.
func (l *MaxMindLocator) Locate(ctx context.Context, ipAddress string) (string, error) {
	if _, ok := l.exempt[ipAddress]; ok {
		slog.Debug("ip exempt from geolocation", "ip", ipAddress)
		return Unknown, nil
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "", fmt.Errorf("invalid ip address: %s", ipAddress)
	}

	record, err := l.reader.City(ip)
	if err != nil {
		return "", fmt.Errorf("failed to look up city for %s: %w", ipAddress, err)
	}
	if record == nil || record.City.Names["en"] == "" {
		return Unknown, nil
	}
	return record.City.Names["en"], nil
}

// Unresolved is a Locator that resolves every address to Unknown. It stands
// in when no GeoIP database is configured.
type Unresolved struct{}

func (Unresolved) Locate(ctx context.Context, ipAddress string) (string, error) {
	return Unknown, nil
}
