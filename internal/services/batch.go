package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/metrics"
	"weekly-route-service/internal/platform/obs"
	"weekly-route-service/internal/ports"
)

// ErrRunInProgress is returned when a batch run is requested while another
// one holds the run lock.
var ErrRunInProgress = errors.New("a batch run is already in progress")

// BatchService orchestrates one weekly route-generation run: it selects
// eligible orders, geocodes them, buckets them by province, optimizes a tour
// per bucket, persists the snapshot, and applies order-state transitions in
// a single batch at the end.
type BatchService struct {
	Orders    ports.OrderRepository
	Snapshots ports.SnapshotRepository
	Geocoder  ports.Geocoder
	Notifier  ports.Notifier
	Lock      ports.RunLock
	Optimizer *Optimizer
	Depot     domain.Depot
	Log       logger.Logger
	Metrics   *metrics.Metrics

	// Now is the clock used for snapshot timestamps; nil means time.Now.
	Now func() time.Time
}

// customerMail is a deferred customer notification, dispatched only after
// the order transaction has committed.
type customerMail struct {
	cancelled   bool
	email       string
	orderNumber string
	count       int
}

// Run executes one batch. It is safe to call concurrently from the
// scheduler trigger and the administrative endpoint; overlapping calls
// beyond the first return ErrRunInProgress.
func (s *BatchService) Run(ctx context.Context) (_ *domain.Snapshot, err error) {
	defer obs.Time(s.Log, "batch.Run")(&err)
	start := time.Now()
	defer func() {
		result := "success"
		switch {
		case errors.Is(err, ErrRunInProgress):
			result = "skipped"
		case err != nil:
			result = "error"
		}
		s.Metrics.RecordRun(result, time.Since(start).Seconds())
	}()

	held, err := s.Lock.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("batch run: acquire run lock: %w", err)
	}
	if !held {
		return nil, ErrRunInProgress
	}
	defer func() {
		if rerr := s.Lock.Release(ctx); rerr != nil {
			s.Log.Warnf("batch run: release run lock: %v", rerr)
		}
	}()

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	candidates, err := s.Orders.ListByStatuses(ctx, []domain.OrderStatus{
		domain.StatusPending,
		domain.StatusRescheduled,
	})
	if err != nil {
		return nil, fmt.Errorf("batch run: list candidate orders: %w", err)
	}

	buckets := make(map[string][]domain.Stop)
	notGeolocated := make([]domain.FailedOrder, 0)
	changes := make([]ports.OrderChange, 0, len(candidates))
	mails := make([]customerMail, 0)

	for _, order := range candidates {
		address := order.FullAddress()

		if !order.Geocodable() {
			notGeolocated = append(notGeolocated, failedOrder(order, domain.ReasonIncompleteAddress, address))
			changes, mails = s.applyReschedulePolicy(order, changes, mails)
			s.Metrics.RecordGeocodeFailure(domain.ReasonIncompleteAddress)
			continue
		}

		coords, ok := s.Geocoder.Geocode(ctx, address)
		if !ok {
			notGeolocated = append(notGeolocated, failedOrder(order, domain.ReasonGeocodeFailed, address))
			changes, mails = s.applyReschedulePolicy(order, changes, mails)
			s.Metrics.RecordGeocodeFailure(domain.ReasonGeocodeFailed)
			continue
		}

		key := order.ProvinceKey()
		buckets[key] = append(buckets[key], domain.Stop{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Total:       order.Total,
			FirstName:   order.Customer.FirstName,
			LastName:    order.Customer.LastName,
			Address:     address,
			Coords:      coords,
			Status:      domain.StatusInDistribution,
		})
		changes = append(changes, ports.OrderChange{
			OrderID:            order.ID,
			Status:             domain.StatusInDistribution,
			RescheduleQuantity: order.RescheduleQuantity,
		})
	}

	routes := make(map[string]domain.ProvinceRoute, len(buckets))
	for province, stops := range buckets {
		tour := s.Optimizer.Optimize(stops, s.Depot)

		addresses := make([]string, 0, len(tour))
		for _, p := range tour {
			addresses = append(addresses, p.Address)
		}

		routes[province] = domain.ProvinceRoute{
			Route:    tour,
			MapsLink: BuildMapsLink(addresses),
		}
		s.Log.Infof("batch run: province=%s stops=%d", province, len(stops))
	}

	snap := &domain.Snapshot{
		GeneratedAt: now,
		Result: domain.RunResult{
			TotalOrders:      len(candidates),
			RoutesByProvince: routes,
			NotGeolocated:    notGeolocated,
		},
	}
	if err := s.Snapshots.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("batch run: persist snapshot: %w", err)
	}

	for province, r := range routes {
		link := ""
		if r.MapsLink != nil {
			link = *r.MapsLink
		}
		s.Notifier.RouteGenerated(province, link)
	}

	// One transaction for every order mutation; a crash before this point
	// leaves order state untouched and the run safe to repeat.
	if err := s.Orders.PersistBatch(ctx, changes); err != nil {
		return nil, fmt.Errorf("batch run: persist order changes: %w", err)
	}
	for _, c := range changes {
		s.Metrics.RecordTransition(string(c.Status))
	}

	for _, m := range mails {
		if m.email == "" {
			continue
		}
		if m.cancelled {
			s.Notifier.OrderCancelled(m.email, m.orderNumber)
		} else {
			s.Notifier.OrderRescheduled(m.email, m.orderNumber, m.count)
		}
	}

	s.Log.Infof(
		"batch run: totalOrders=%d provinces=%d notGeolocated=%d",
		len(candidates), len(routes), len(notGeolocated),
	)

	return snap, nil
}

// applyReschedulePolicy advances the failure counter of an order that could
// not be geolocated. Reaching the cancellation threshold escalates to a
// cancellation with restock; below it the order is rescheduled.
func (s *BatchService) applyReschedulePolicy(
	order *domain.Order,
	changes []ports.OrderChange,
	mails []customerMail,
) ([]ports.OrderChange, []customerMail) {
	count := order.RescheduleQuantity + 1

	if count >= domain.RescheduleCancelThreshold {
		changes = append(changes, ports.OrderChange{
			OrderID:            order.ID,
			Status:             domain.StatusCancelled,
			RescheduleQuantity: count,
			Restock:            true,
		})
		mails = append(mails, customerMail{
			cancelled:   true,
			email:       order.Customer.Email,
			orderNumber: order.OrderNumber,
		})
		return changes, mails
	}

	changes = append(changes, ports.OrderChange{
		OrderID:            order.ID,
		Status:             domain.StatusRescheduled,
		RescheduleQuantity: count,
	})
	mails = append(mails, customerMail{
		email:       order.Customer.Email,
		orderNumber: order.OrderNumber,
		count:       count,
	})
	return changes, mails
}

func failedOrder(order *domain.Order, reason, address string) domain.FailedOrder {
	return domain.FailedOrder{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Reason:      reason,
		Address:     address,
		Total:       order.Total,
		FirstName:   order.Customer.FirstName,
		LastName:    order.Customer.LastName,
	}
}
