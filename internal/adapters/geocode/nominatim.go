package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"weekly-route-service/internal/domain"
)

// Nominatim is the free fallback provider. It accepts the first search
// result without confidence filtering, a documented weaker guarantee used
// only when the primary provider is unavailable or unkeyed.
type Nominatim struct {
	session *http.Client
	baseURL string
}

func NewNominatim() *Nominatim {
	return &Nominatim{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://nominatim.openstreetmap.org",
	}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Lookup(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search", nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "weekly-route-service/1.0")

	q := req.URL.Query()
	q.Set("format", "json")
	q.Set("q", normalize(address))
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := n.session.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: %w", err)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: decode response: %w", err)
	}

	if len(results) == 0 {
		return domain.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: invalid longitude %q: %w", results[0].Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}
