package domain

// Stop is one delivery destination derived from an order for the duration of
// a batch run. Stops are created fresh on every run and never persisted on
// their own; only the aggregated run result is stored.
type Stop struct {
	OrderID     string
	OrderNumber string
	Total       float64
	FirstName   string
	LastName    string
	Address     string
	Coords      Coordinates
	Status      OrderStatus
}

// Depot is the fixed origin and destination of every regional route. It is
// configuration, not data, and constant across runs.
type Depot struct {
	Coords  Coordinates
	Address string
}

// RoutePoint is one element of a persisted route: either a delivery stop or
// the depot. Depot points carry only address and coordinates.
type RoutePoint struct {
	OrderID     string  `json:"orderId,omitempty"`
	OrderNumber string  `json:"orderNumber,omitempty"`
	Total       float64 `json:"total,omitempty"`
	FirstName   string  `json:"firstName,omitempty"`
	LastName    string  `json:"lastName,omitempty"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Status      string  `json:"status,omitempty"`
}

// DepotPoint converts the depot to its route representation.
func DepotPoint(d Depot) RoutePoint {
	return RoutePoint{
		Address: d.Address,
		Lat:     d.Coords.Lat,
		Lon:     d.Coords.Lon,
	}
}

// StopPoint converts a stop to its route representation.
func StopPoint(s Stop) RoutePoint {
	return RoutePoint{
		OrderID:     s.OrderID,
		OrderNumber: s.OrderNumber,
		Total:       s.Total,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Address:     s.Address,
		Lat:         s.Coords.Lat,
		Lon:         s.Coords.Lon,
		Status:      string(s.Status),
	}
}
