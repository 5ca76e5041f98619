package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestFingerprintKnownUserAgent(t *testing.T) {
	f := New()
	got := f.Fingerprint(chromeOnMac)
	assert.Equal(t, "Chrome 120.0 - Mac OS X 10.15", got)
}

func TestFingerprintDeterministic(t *testing.T) {
	f := New()
	first := f.Fingerprint(chromeOnMac)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Fingerprint(chromeOnMac))
	}
}

func TestFingerprintAbsentUserAgent(t *testing.T) {
	f := New()
	assert.Equal(t, Unknown, f.Fingerprint(""))
}

func TestFingerprintUnparseableUserAgent(t *testing.T) {
	f := New()
	assert.Equal(t, Unknown, f.Fingerprint("definitely not a browser"))
}
