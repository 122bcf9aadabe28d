// Package ident provides client instance identity and environment signal
// helpers: locally-unique instance ids, UTM parameter extraction and device
// classification from the user agent.
package ident

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Device classes inferred from the user agent string.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// utmKeys is the closed set of UTM query parameters propagated to the server.
var utmKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// NewClientID generates a locally-unique client instance id. Uniqueness is
// probabilistic (UUIDv4); collisions across instances of the same origin are
// overwhelmingly unlikely.
func NewClientID() string {
	return uuid.NewString()
}

// ShortTag derives a compact, stable tag from a client id for use as a log
// field. The full id appears once at startup; repeated log lines carry the
// tag to stay readable.
func ShortTag(clientID string) string {
	return strconv.FormatUint(xxh3.HashString(clientID)&0xffffffff, 16)
}

// ParseUTM extracts the known UTM parameters from a raw query string.
// Unknown parameters are ignored; a missing or unparsable query yields an
// empty map.
func ParseUTM(rawQuery string) map[string]string {
	out := make(map[string]string)

	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return out
	}

	for _, key := range utmKeys {
		if v := values.Get(key); v != "" {
			out[key] = v
		}
	}

	return out
}

// DeviceClass infers a coarse device class from a user agent string.
//
// Tablets are checked before mobiles because tablet user agents commonly
// contain mobile markers as well.
func DeviceClass(userAgent string) string {
	if userAgent == "" {
		return DeviceUnknown
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}
