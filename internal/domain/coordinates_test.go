package domain

import (
	"math"
	"testing"
)

func TestDistanceIdentity(t *testing.T) {
	pts := []Coordinates{
		{Lat: 0, Lon: 0},
		{Lat: -32.9557, Lon: -60.6489},
		{Lat: 45.5, Lon: 170.25},
	}
	for _, p := range pts {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Coordinates{Lat: -32.9557, Lon: -60.6489}
	b := Coordinates{Lat: -31.6333, Lon: -60.7}

	ab := Distance(a, b)
	ba := Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("Distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Rosario to Santa Fe city, roughly 145 km in a straight line.
	rosario := Coordinates{Lat: -32.9557, Lon: -60.6489}
	santaFe := Coordinates{Lat: -31.6333, Lon: -60.7}

	d := Distance(rosario, santaFe)
	if d < 140 || d > 155 {
		t.Fatalf("Distance = %v km, expected roughly 145 km", d)
	}
}

func TestFullAddress(t *testing.T) {
	o := &Order{Customer: Customer{
		Street:       "Av. Pellegrini",
		StreetNumber: "250",
		City:         "Rosario",
		Province:     "Santa Fe",
	}}

	got := o.FullAddress()
	want := "Av. Pellegrini 250, Rosario, Santa Fe, Argentina"
	if got != want {
		t.Fatalf("FullAddress = %q, want %q", got, want)
	}
}

func TestFullAddressSkipsMissingComponents(t *testing.T) {
	o := &Order{Customer: Customer{Street: "Av. Pellegrini", City: "Rosario"}}

	got := o.FullAddress()
	want := "Av. Pellegrini, Rosario, Argentina"
	if got != want {
		t.Fatalf("FullAddress = %q, want %q", got, want)
	}
	if o.Geocodable() {
		t.Fatal("order with missing street number should not be geocodable")
	}
}

func TestProvinceKey(t *testing.T) {
	o := &Order{Customer: Customer{Province: "  Santa Fe "}}
	if got := o.ProvinceKey(); got != "santa fe" {
		t.Fatalf("ProvinceKey = %q, want %q", got, "santa fe")
	}

	o.Customer.Province = ""
	if got := o.ProvinceKey(); got != "no province" {
		t.Fatalf("ProvinceKey = %q, want %q", got, "no province")
	}
}
