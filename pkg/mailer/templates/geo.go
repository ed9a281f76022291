package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Geo is a coarse IP geolocation result used in login notification emails.
type Geo struct {
	Country  string `json:"country"`
	Region   string `json:"regionName"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

// GeoResolver looks up geolocation for an IP address.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Geo, error)
}

// IPAPIResolver resolves via the free ip-api.com endpoint.
type IPAPIResolver struct {
	Client *http.Client
}

func (r IPAPIResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"http://ip-api.com/json/"+ip+"?fields=country,regionName,city,timezone", nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("geo lookup status %d", resp.StatusCode)
	}
	var g Geo
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return Geo{}, err
	}
	return g, nil
}

// FormatGeo renders a Geo as "City, Region, Country", skipping empty parts.
func FormatGeo(g Geo) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{g.City, g.Region, g.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
