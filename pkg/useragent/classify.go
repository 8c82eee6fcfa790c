package useragent

import "strings"

// Device classes recorded on click events.
const (
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

// Browser families recorded on click events.
const (
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserOther   = "Other"
)

// mobileTokens is the ordered token list for the mobile check. The tablet
// check runs first, so "android" here only matches phones (tablets carry
// "android" without "mobi").
var mobileTokens = []string{
	"mobile",
	"android",
	"iphone",
	"ipod",
	"iemobile",
	"blackberry",
	"kindle",
	"webos",
	"windows phone",
	"opera mini",
}

// browserRules is the ordered browser rule table. Order matters: Chromium
// Edge advertises "chrome" and "safari", Opera advertises "chrome", and
// desktop Chrome advertises "safari", so the more specific tokens must be
// checked first. First matching rule wins.
var browserRules = []struct {
	family string
	tokens []string
}{
	{BrowserEdge, []string{"edg"}},
	{BrowserOpera, []string{"opr", "opera"}},
	{BrowserChrome, []string{"chrome", "crios"}},
	{BrowserSafari, []string{"safari"}},
	{BrowserFirefox, []string{"firefox", "fxios"}},
}

// ClassifyDevice maps a raw User-Agent string to tablet, mobile or desktop.
// Empty input and the literal "unknown" placeholder yield nil.
func ClassifyDevice(userAgent string) *string {
	if userAgent == "" || userAgent == "unknown" {
		return nil
	}

	ua := strings.ToLower(userAgent)

	// Tablets first: Android tablets carry "android" but no "mobi" token.
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") ||
		(strings.Contains(ua, "android") && !strings.Contains(ua, "mobi")) {
		return strPtr(DeviceTablet)
	}

	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return strPtr(DeviceMobile)
		}
	}

	return strPtr(DeviceDesktop)
}

// ClassifyBrowser maps a raw User-Agent string to a browser family using the
// ordered rule table above. Unmatched non-empty input yields "Other", empty
// input and the literal "unknown" yield nil.
func ClassifyBrowser(userAgent string) *string {
	if userAgent == "" || userAgent == "unknown" {
		return nil
	}

	ua := strings.ToLower(userAgent)

	for _, rule := range browserRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return strPtr(rule.family)
			}
		}
	}

	return strPtr(BrowserOther)
}

func strPtr(s string) *string {
	return &s
}
