package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/logger"
)

func openCageServer(t *testing.T, confidence int, road, houseNumber string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ar", r.URL.Query().Get("countrycode"))
		require.Equal(t, "es", r.URL.Query().Get("language"))
		require.Equal(t, "1", r.URL.Query().Get("limit"))

		fmt.Fprintf(w, `{"results":[{"geometry":{"lat":-32.95,"lng":-60.65},"confidence":%d,"components":{"road":%q,"house_number":%q}}]}`,
			confidence, road, houseNumber)
	}))
}

func newTestOpenCage(t *testing.T, url string) *OpenCage {
	t.Helper()
	oc, err := NewOpenCage("test-key", 7)
	require.NoError(t, err)
	oc.baseURL = url
	return oc
}

func TestOpenCageAcceptsConfidentMatch(t *testing.T) {
	srv := openCageServer(t, 9, "Av. Pellegrini", "250")
	defer srv.Close()

	coords, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.Coordinates{Lat: -32.95, Lon: -60.65}, coords)
}

func TestOpenCageRejectsLowConfidence(t *testing.T) {
	srv := openCageServer(t, 4, "Av. Pellegrini", "250")
	defer srv.Close()

	_, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenCageRejectsMissingRoad(t *testing.T) {
	srv := openCageServer(t, 9, "", "250")
	defer srv.Close()

	_, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenCageRejectsStreetWithoutHouseNumber(t *testing.T) {
	srv := openCageServer(t, 9, "Av. Pellegrini", "")
	defer srv.Close()

	_, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenCageRejectsEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	_, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenCageServerErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, ok, err := newTestOpenCage(t, srv.URL).Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.Error(t, err)
	require.False(t, ok)
}

func TestNominatimFallbackAcceptsFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[{"lat":"-32.9557","lon":"-60.6489"}]`)
	}))
	defer srv.Close()

	n := NewNominatim()
	n.baseURL = srv.URL

	coords, ok, err := n.Lookup(context.Background(), "Av. Pellegrini 250, Rosario")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.Coordinates{Lat: -32.9557, Lon: -60.6489}, coords)
}

type stubProvider struct {
	name   string
	coords domain.Coordinates
	ok     bool
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Lookup(context.Context, string) (domain.Coordinates, bool, error) {
	s.calls++
	return s.coords, s.ok, s.err
}

func TestChainFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &stubProvider{name: "primary", err: fmt.Errorf("unreachable")}
	fallback := &stubProvider{name: "fallback", coords: domain.Coordinates{Lat: 1, Lon: 2}, ok: true}

	chain := NewChain(logger.NopLogger{}, primary, fallback)

	coords, ok := chain.Geocode(context.Background(), "somewhere")
	require.True(t, ok)
	require.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, coords)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestChainStopsAtFirstAcceptedMatch(t *testing.T) {
	primary := &stubProvider{name: "primary", coords: domain.Coordinates{Lat: 3, Lon: 4}, ok: true}
	fallback := &stubProvider{name: "fallback"}

	chain := NewChain(logger.NopLogger{}, primary, fallback)

	_, ok := chain.Geocode(context.Background(), "somewhere")
	require.True(t, ok)
	require.Zero(t, fallback.calls)
}

func TestChainRejectionIsFinal(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	fallback := &stubProvider{name: "fallback", coords: domain.Coordinates{Lat: 9, Lon: 9}, ok: true}

	chain := NewChain(logger.NopLogger{}, primary, fallback)

	// A filtered-out address must stay unresolved; the unfiltered fallback
	// would accept exactly the matches the primary exists to block.
	coords, ok := chain.Geocode(context.Background(), "Calle Falsa, Rosario")
	require.False(t, ok)
	require.Equal(t, domain.Coordinates{}, coords)
	require.Equal(t, 1, primary.calls)
	require.Zero(t, fallback.calls)
}

func TestChainReturnsFalseWhenAllFail(t *testing.T) {
	chain := NewChain(logger.NopLogger{},
		&stubProvider{name: "a", err: fmt.Errorf("timeout")},
		&stubProvider{name: "b", err: fmt.Errorf("unreachable")},
	)

	_, ok := chain.Geocode(context.Background(), "somewhere")
	require.False(t, ok)
}
