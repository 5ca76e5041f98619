package geo

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCityReader struct {
	city  string
	err   error
	calls int
}

func (s *stubCityReader) City(ip net.IP) (*geoip2.City, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	record := &geoip2.City{}
	if s.city != "" {
		record.City.Names = map[string]string{"en": s.city}
	}
	return record, nil
}

func TestLocateExemptIPSkipsDatabase(t *testing.T) {
	reader := &stubCityReader{city: "Berlin"}
	locator := newLocatorWithReader(reader, []string{"10.0.0.1", "127.0.0.1"})

	location, err := locator.Locate(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, Unknown, location)
	assert.Zero(t, reader.calls)
}

func TestLocateReturnsCityName(t *testing.T) {
	reader := &stubCityReader{city: "Berlin"}
	locator := newLocatorWithReader(reader, nil)

	location, err := locator.Locate(context.Background(), "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", location)
	assert.Equal(t, 1, reader.calls)
}

func TestLocateEmptyCityIsUnknown(t *testing.T) {
	reader := &stubCityReader{}
	locator := newLocatorWithReader(reader, nil)

	location, err := locator.Locate(context.Background(), "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, Unknown, location)
}

func TestLocateLookupFailurePropagates(t *testing.T) {
	lookupErr := errors.New("database unavailable")
	locator := newLocatorWithReader(&stubCityReader{err: lookupErr}, nil)

	_, err := locator.Locate(context.Background(), "203.0.113.5")
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
}

func TestLocateInvalidIP(t *testing.T) {
	locator := newLocatorWithReader(&stubCityReader{}, nil)

	_, err := locator.Locate(context.Background(), "not-an-ip")
	assert.Error(t, err)
}

func TestExtractClientIPForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	assert.Equal(t, "203.0.113.5", ExtractClientIP(r))
}

func TestExtractClientIPForwardedForWithSpaces(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")

	assert.Equal(t, "203.0.113.5", ExtractClientIP(r))
}

func TestExtractClientIPRemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:52114"

	assert.Equal(t, "192.0.2.7", ExtractClientIP(r))
}
