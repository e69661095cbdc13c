package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weekly-route-service/internal/domain"
)

// OpenCage queries the OpenCage forward-geocoding API, restricted to
// Argentina, and applies a confidence-based acceptance policy: a match is
// rejected when the provider's confidence score is too low, when no road was
// resolved, or when a street-plus-number input resolved without a house
// number. The filtering guards against false-positive geocodes that would
// silently misroute a delivery.
type OpenCage struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	minConfidence int
}

func NewOpenCage(apiKey string, minConfidence int) (*OpenCage, error) {
	if apiKey == "" {
		return nil, errors.New("opencage: api key is empty")
	}

	return &OpenCage{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.opencagedata.com",
		minConfidence: minConfidence,
	}, nil
}

func (o *OpenCage) Name() string { return "opencage" }

type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Confidence int `json:"confidence"`
		Components struct {
			Road        string `json:"road"`
			HouseNumber string `json:"house_number"`
		} `json:"components"`
	} `json:"results"`
}

// Lookup resolves one address with a single best-match query. ok is false
// for any rejection; err is reserved for transport-level failures.
func (o *OpenCage) Lookup(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	norm := normalize(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/v1/json", nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("opencage: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("q", norm)
	q.Set("key", o.apiKey)
	q.Set("language", "es")
	q.Set("countrycode", "ar")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := o.session.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("opencage: execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("opencage: %w", err)
	}

	var decoded openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("opencage: decode response: %w", err)
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, false, nil
	}

	best := decoded.Results[0]
	if best.Confidence < o.minConfidence {
		return domain.Coordinates{}, false, nil
	}
	if best.Components.Road == "" {
		return domain.Coordinates{}, false, nil
	}
	// A multi-token query implies street plus number; a match without a
	// house number then means the provider only found the street.
	if len(strings.Fields(norm)) > 1 && best.Components.HouseNumber == "" {
		return domain.Coordinates{}, false, nil
	}

	return domain.Coordinates{Lat: best.Geometry.Lat, Lon: best.Geometry.Lng}, true, nil
}
