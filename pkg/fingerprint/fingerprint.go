// Package fingerprint derives a stable, human-readable device signature from
// a raw user-agent string.
package fingerprint

import (
	"fmt"

	"github.com/ua-parser/uap-go/uaparser"
)

// Unknown is the signature returned when the user-agent is absent or yields
// no usable client or OS information.
const Unknown = "UNKNOWN"

// Fingerprinter parses user-agent strings into device signatures. It is safe
// for concurrent use.
type Fingerprinter struct {
	parser *uaparser.Parser
}

// New creates a Fingerprinter backed by the embedded uap-core patterns.
func New() *Fingerprinter {
	return &Fingerprinter{parser: uaparser.NewFromSaved()}
}

// Fingerprint derives the device signature for the given user-agent string.
// The signature has the shape "<client> <maj>.<min> - <os> <maj>.<min>" and
// is deterministic: identical user-agent strings always yield identical
// signatures, so stored signatures can be compared by exact match.
func (f *Fingerprinter) Fingerprint(userAgent string) string {
	if userAgent == "" {
		return Unknown
	}

	client := f.parser.Parse(userAgent)
	if client == nil || (client.UserAgent.Family == "Other" && client.Os.Family == "Other") {
		return Unknown
	}

	return fmt.Sprintf("%s %s.%s - %s %s.%s",
		client.UserAgent.Family, client.UserAgent.Major, client.UserAgent.Minor,
		client.Os.Family, client.Os.Major, client.Os.Minor)
}
