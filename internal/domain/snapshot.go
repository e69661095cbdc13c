package domain

import "time"

// Reasons recorded for orders that could not be placed on a route.
const (
	ReasonIncompleteAddress = "incomplete address"
	ReasonGeocodeFailed     = "could not geocode"
)

// FailedOrder records one order that could not be geolocated during a run.
type FailedOrder struct {
	OrderID     string  `json:"orderId"`
	OrderNumber string  `json:"orderNumber"`
	Reason      string  `json:"reason"`
	Address     string  `json:"address"`
	Total       float64 `json:"total"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
}

// ProvinceRoute is the optimized route for one province bucket plus an
// external driving-directions link. MapsLink is nil when no meaningful
// multi-point link could be built.
type ProvinceRoute struct {
	Route    []RoutePoint `json:"route"`
	MapsLink *string      `json:"mapsLink"`
}

// RunResult is the full payload of one batch execution.
type RunResult struct {
	TotalOrders      int                      `json:"totalOrders"`
	RoutesByProvince map[string]ProvinceRoute `json:"routesByProvince"`
	NotGeolocated    []FailedOrder            `json:"notGeolocated"`
}

// Snapshot is the persisted, immutable record of one batch run. Snapshots
// are append-only; the latest is the one with the maximum GeneratedAt.
type Snapshot struct {
	GeneratedAt time.Time
	Result      RunResult
}

// ScheduleConfig is the persisted recurring-trigger expression. The most
// recently updated config is the active one.
type ScheduleConfig struct {
	Expression  string
	LastUpdated time.Time
}
