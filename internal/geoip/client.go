package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Location is the result of an IP geolocation lookup. Both fields are nil
// when the lookup was skipped or failed; a failed lookup must never fail
// the click pipeline.
type Location struct {
	Country *string
	City    *string
}

// Client queries an external ip-api.com style endpoint. Safe on a nil
// receiver: a nil client always returns an empty Location.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *zap.Logger
}

// apiResponse is the ip-api.com JSON shape.
type apiResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// New creates a geolocation client with a bounded per-request timeout.
func New(endpoint string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		log:        log,
	}
}

// Lookup resolves an IP address to a country and city. Private and loopback
// addresses, the literal "unknown" placeholder and unparsable input
// short-circuit to an empty Location without any network call.
func (c *Client) Lookup(ctx context.Context, ipAddress string) Location {
	if c == nil {
		return Location{}
	}

	if !isRoutable(ipAddress) {
		return Location{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+ipAddress, nil)
	if err != nil {
		c.log.Warn("failed to build geolocation request", zap.String("ip", ipAddress), zap.Error(err))
		return Location{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("geolocation lookup failed", zap.String("ip", ipAddress), zap.Error(err))
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geolocation lookup returned non-OK status",
			zap.String("ip", ipAddress),
			zap.Int("status_code", resp.StatusCode))
		return Location{}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("failed to decode geolocation response", zap.String("ip", ipAddress), zap.Error(err))
		return Location{}
	}

	if body.Status != "success" {
		c.log.Debug("geolocation lookup unsuccessful",
			zap.String("ip", ipAddress),
			zap.String("status", body.Status))
		return Location{}
	}

	var loc Location
	if body.Country != "" {
		loc.Country = &body.Country
	}
	if body.City != "" {
		loc.City = &body.City
	}

	return loc
}

// isRoutable reports whether the address is worth sending to the external
// lookup: loopback (127.*), RFC1918 ranges (10.*, 172.16-31.*, 192.168.*)
// and placeholder values are not.
func isRoutable(ipAddress string) bool {
	if ipAddress == "" || ipAddress == "unknown" {
		return false
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return false
	}

	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified()
}

// String implements fmt.Stringer for debug logging.
func (l Location) String() string {
	country, city := "-", "-"
	if l.Country != nil {
		country = *l.Country
	}
	if l.City != nil {
		city = *l.City
	}
	return fmt.Sprintf("%s/%s", country, city)
}
