package dto

import (
	"time"

	"weekly-route-service/internal/domain"
)

type SnapshotResponse struct {
	GeneratedAt      time.Time                       `json:"generatedAt"`
	TotalOrders      int                             `json:"totalOrders"`
	RoutesByProvince map[string]domain.ProvinceRoute `json:"routesByProvince"`
	NotGeolocated    []domain.FailedOrder            `json:"notGeolocated"`
}

func FromSnapshot(s *domain.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		GeneratedAt:      s.GeneratedAt,
		TotalOrders:      s.Result.TotalOrders,
		RoutesByProvince: s.Result.RoutesByProvince,
		NotGeolocated:    s.Result.NotGeolocated,
	}
}
