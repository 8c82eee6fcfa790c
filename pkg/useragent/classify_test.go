package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "iPad is tablet",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			expected:  DeviceTablet,
		},
		{
			name:      "android without mobi token is tablet",
			userAgent: "Mozilla/5.0 (Linux; Android 13; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			expected:  DeviceTablet,
		},
		{
			name:      "android phone with mobi token is mobile",
			userAgent: "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			expected:  DeviceMobile,
		},
		{
			name:      "explicit tablet token wins over mobile",
			userAgent: "Mozilla/5.0 (Tablet; Mobile; rv:109.0) Gecko/109.0 Firefox/119.0",
			expected:  DeviceTablet,
		},
		{
			name:      "iPhone is mobile",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			expected:  DeviceMobile,
		},
		{
			name:      "windows desktop",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			expected:  DeviceDesktop,
		},
		{
			name:      "mac desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			expected:  DeviceDesktop,
		},
		{
			name:      "unrecognized string falls back to desktop",
			userAgent: "curl/8.4.0",
			expected:  DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := ClassifyDevice(tt.userAgent)
			require.NotNil(t, device)
			assert.Equal(t, tt.expected, *device)
		})
	}
}

func TestClassifyDevice_MissingUserAgent(t *testing.T) {
	assert.Nil(t, ClassifyDevice(""))
	assert.Nil(t, ClassifyDevice("unknown"))
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "chromium edge classified before chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			expected:  BrowserEdge,
		},
		{
			name:      "opera classified before chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 OPR/105.0.0.0",
			expected:  BrowserOpera,
		},
		{
			name:      "chrome classified before safari",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			expected:  BrowserChrome,
		},
		{
			name:      "chrome on iOS",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/120.0.6099.119 Mobile/15E148 Safari/604.1",
			expected:  BrowserChrome,
		},
		{
			name:      "plain safari",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			expected:  BrowserSafari,
		},
		{
			name:      "firefox",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
			expected:  BrowserFirefox,
		},
		{
			name:      "firefox on iOS",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) FxiOS/120.0 Mobile/15E148",
			expected:  BrowserFirefox,
		},
		{
			name:      "unmatched non-empty input is Other",
			userAgent: "curl/8.4.0",
			expected:  BrowserOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := ClassifyBrowser(tt.userAgent)
			require.NotNil(t, browser)
			assert.Equal(t, tt.expected, *browser)
		})
	}
}

func TestClassifyBrowser_MissingUserAgent(t *testing.T) {
	assert.Nil(t, ClassifyBrowser(""))
	assert.Nil(t, ClassifyBrowser("unknown"))
}
