package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/ports"
)

type fakeOrderRepo struct {
	orders     []*domain.Order
	persisted  [][]ports.OrderChange
	persistErr error
	listCalls  int
}

func (f *fakeOrderRepo) ListByStatuses(_ context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error) {
	f.listCalls++
	want := map[domain.OrderStatus]struct{}{}
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	out := []*domain.Order{}
	for _, o := range f.orders {
		if _, ok := want[o.Status]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) PersistBatch(_ context.Context, changes []ports.OrderChange) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.persisted = append(f.persisted, changes)
	return nil
}

type fakeSnapshotRepo struct {
	inserted []*domain.Snapshot
}

func (f *fakeSnapshotRepo) Insert(_ context.Context, snap *domain.Snapshot) error {
	f.inserted = append(f.inserted, snap)
	return nil
}

func (f *fakeSnapshotRepo) Latest(context.Context) (*domain.Snapshot, error) {
	if len(f.inserted) == 0 {
		return nil, ports.ErrNoSnapshot
	}
	return f.inserted[len(f.inserted)-1], nil
}

type fakeGeocoder struct {
	coords map[string]domain.Coordinates
	calls  []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, bool) {
	f.calls = append(f.calls, address)
	c, ok := f.coords[address]
	return c, ok
}

type recordingNotifier struct {
	routes      []string
	rescheduled []string
	cancelled   []string
}

func (n *recordingNotifier) RouteGenerated(region, _ string) { n.routes = append(n.routes, region) }
func (n *recordingNotifier) OrderRescheduled(_, orderNumber string, _ int) {
	n.rescheduled = append(n.rescheduled, orderNumber)
}
func (n *recordingNotifier) OrderCancelled(_, orderNumber string) {
	n.cancelled = append(n.cancelled, orderNumber)
}

type fakeLock struct {
	busy     bool
	acquired int
	released int
}

func (l *fakeLock) TryAcquire(context.Context) (bool, error) {
	if l.busy {
		return false, nil
	}
	l.acquired++
	return true, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.released++
	return nil
}

func orderFixture(id, number string, status domain.OrderStatus, c domain.Customer) *domain.Order {
	return &domain.Order{
		ID:          id,
		OrderNumber: number,
		Status:      status,
		Total:       1500,
		Customer:    c,
		OrderDate:   time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
	}
}

func newBatch(repo *fakeOrderRepo, snaps *fakeSnapshotRepo, geo *fakeGeocoder, note *recordingNotifier, lock *fakeLock) *BatchService {
	return &BatchService{
		Orders:    repo,
		Snapshots: snaps,
		Geocoder:  geo,
		Notifier:  note,
		Lock:      lock,
		Optimizer: NewOptimizer(200, 50, rand.New(rand.NewSource(1))),
		Depot:     testDepot,
		Log:       logger.NopLogger{},
		Now:       func() time.Time { return time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC) },
	}
}

func TestRunBucketsGeocodesAndReschedules(t *testing.T) {
	santaFe := domain.Customer{
		FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com",
		Street: "Calle Uno", StreetNumber: "100", City: "Rosario", Province: "Santa Fe",
	}
	santaFe2 := santaFe
	santaFe2.Street = "Calle Dos"
	santaFe2.StreetNumber = "200"
	incomplete := santaFe
	incomplete.StreetNumber = ""

	repo := &fakeOrderRepo{orders: []*domain.Order{
		orderFixture("o1", "N-1", domain.StatusPending, santaFe),
		orderFixture("o2", "N-2", domain.StatusPending, santaFe2),
		orderFixture("o3", "N-3", domain.StatusPending, incomplete),
	}}
	geo := &fakeGeocoder{coords: map[string]domain.Coordinates{
		"Calle Uno 100, Rosario, Santa Fe, Argentina": {Lat: -32.95, Lon: -60.65},
		"Calle Dos 200, Rosario, Santa Fe, Argentina": {Lat: -32.96, Lon: -60.66},
	}}
	snaps := &fakeSnapshotRepo{}
	note := &recordingNotifier{}
	lock := &fakeLock{}

	snap, err := newBatch(repo, snaps, geo, note, lock).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, snap.Result.TotalOrders)
	require.Len(t, snap.Result.RoutesByProvince, 1)

	region, ok := snap.Result.RoutesByProvince["santa fe"]
	require.True(t, ok)
	require.Len(t, region.Route, 4)
	require.NotNil(t, region.MapsLink)

	require.Len(t, snap.Result.NotGeolocated, 1)
	require.Equal(t, "o3", snap.Result.NotGeolocated[0].OrderID)
	require.Equal(t, domain.ReasonIncompleteAddress, snap.Result.NotGeolocated[0].Reason)

	// The incomplete order never reaches the geocoder.
	require.Len(t, geo.calls, 2)

	require.Len(t, repo.persisted, 1)
	byID := map[string]ports.OrderChange{}
	for _, c := range repo.persisted[0] {
		byID[c.OrderID] = c
	}
	require.Equal(t, domain.StatusInDistribution, byID["o1"].Status)
	require.Equal(t, domain.StatusInDistribution, byID["o2"].Status)
	require.Equal(t, domain.StatusRescheduled, byID["o3"].Status)
	require.Equal(t, 1, byID["o3"].RescheduleQuantity)
	require.False(t, byID["o3"].Restock)

	require.Equal(t, []string{"santa fe"}, note.routes)
	require.Equal(t, []string{"N-3"}, note.rescheduled)
	require.Empty(t, note.cancelled)

	require.Equal(t, 1, lock.acquired)
	require.Equal(t, 1, lock.released)
}

func TestRunCancelsAtThresholdWithRestock(t *testing.T) {
	customer := domain.Customer{
		FirstName: "Luis", LastName: "Prato", Email: "luis@example.com",
		Street: "Calle Tres", StreetNumber: "300", City: "Rosario", Province: "Santa Fe",
	}
	order := orderFixture("o9", "N-9", domain.StatusRescheduled, customer)
	order.RescheduleQuantity = domain.RescheduleCancelThreshold - 1

	repo := &fakeOrderRepo{orders: []*domain.Order{order}}
	geo := &fakeGeocoder{coords: map[string]domain.Coordinates{}} // geocode fails
	note := &recordingNotifier{}

	snap, err := newBatch(repo, &fakeSnapshotRepo{}, geo, note, &fakeLock{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Result.NotGeolocated, 1)
	require.Equal(t, domain.ReasonGeocodeFailed, snap.Result.NotGeolocated[0].Reason)

	require.Len(t, repo.persisted, 1)
	require.Len(t, repo.persisted[0], 1)
	change := repo.persisted[0][0]
	require.Equal(t, domain.StatusCancelled, change.Status)
	require.Equal(t, domain.RescheduleCancelThreshold, change.RescheduleQuantity)
	require.True(t, change.Restock)

	require.Equal(t, []string{"N-9"}, note.cancelled)
	require.Empty(t, note.rescheduled)
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	repo := &fakeOrderRepo{}
	lock := &fakeLock{busy: true}

	_, err := newBatch(repo, &fakeSnapshotRepo{}, &fakeGeocoder{}, &recordingNotifier{}, lock).Run(context.Background())

	require.ErrorIs(t, err, ErrRunInProgress)
	require.Zero(t, repo.listCalls)
}

func TestRunAbortsOnPersistFailure(t *testing.T) {
	customer := domain.Customer{
		Street: "Calle Uno", StreetNumber: "100", City: "Rosario", Province: "Santa Fe",
	}
	repo := &fakeOrderRepo{
		orders:     []*domain.Order{orderFixture("o1", "N-1", domain.StatusPending, customer)},
		persistErr: errors.New("db down"),
	}
	geo := &fakeGeocoder{coords: map[string]domain.Coordinates{
		"Calle Uno 100, Rosario, Santa Fe, Argentina": {Lat: -32.95, Lon: -60.65},
	}}
	note := &recordingNotifier{}
	lock := &fakeLock{}

	_, err := newBatch(repo, &fakeSnapshotRepo{}, geo, note, lock).Run(context.Background())

	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRunInProgress)
	// Customer mails wait for the commit; the failed run must not send any.
	require.Empty(t, note.rescheduled)
	require.Empty(t, note.cancelled)
	require.Equal(t, 1, lock.released)
}

func TestRunWithNoCandidates(t *testing.T) {
	snaps := &fakeSnapshotRepo{}

	snap, err := newBatch(&fakeOrderRepo{}, snaps, &fakeGeocoder{}, &recordingNotifier{}, &fakeLock{}).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, snap.Result.TotalOrders)
	require.Empty(t, snap.Result.RoutesByProvince)
	require.Empty(t, snap.Result.NotGeolocated)
	require.Len(t, snaps.inserted, 1)
}
