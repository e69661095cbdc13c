package domain

import (
	"strings"
	"time"
)

// OrderStatus enumerates the lifecycle states of a delivery order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusInDistribution OrderStatus = "in distribution"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRescheduled    OrderStatus = "rescheduled"
)

// RescheduleCancelThreshold is the number of failed delivery attempts after
// which an order is cancelled instead of rescheduled again.
const RescheduleCancelThreshold = 3

// Country appended to every assembled delivery address.
const addressCountry = "Argentina"

// Customer holds the delivery-relevant attributes of the ordering user,
// denormalized onto the order by the repository.
type Customer struct {
	FirstName    string
	LastName     string
	Email        string
	Street       string
	StreetNumber string
	City         string
	Province     string
}

// Order is a delivery order as read from the order store. The routing core
// reads it, transitions its status and reschedule counter, and persists the
// mutations in one batch at the end of a run.
type Order struct {
	ID                 string
	OrderNumber        string
	Status             OrderStatus
	Total              float64
	RescheduleQuantity int
	Customer           Customer
	OrderDate          time.Time
	UpdatedDate        time.Time
}

// Geocodable reports whether every address component required for a geocode
// lookup is present. Orders failing this check never reach the geocoder.
func (o *Order) Geocodable() bool {
	c := o.Customer
	return strings.TrimSpace(c.Street) != "" &&
		strings.TrimSpace(c.StreetNumber) != "" &&
		strings.TrimSpace(c.City) != "" &&
		strings.TrimSpace(c.Province) != ""
}

// FullAddress assembles the free-text postal address from the present
// components, always ending with the country.
func (o *Order) FullAddress() string {
	c := o.Customer
	street := strings.TrimSpace(strings.TrimSpace(c.Street) + " " + strings.TrimSpace(c.StreetNumber))

	parts := make([]string, 0, 4)
	for _, p := range []string{street, strings.TrimSpace(c.City), strings.TrimSpace(c.Province)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, addressCountry)

	return strings.Join(parts, ", ")
}

// ProvinceKey returns the normalized bucketing key for the order's province:
// trimmed, lower-cased, with a fixed placeholder when absent.
func (o *Order) ProvinceKey() string {
	p := strings.ToLower(strings.TrimSpace(o.Customer.Province))
	if p == "" {
		return "no province"
	}
	return p
}
