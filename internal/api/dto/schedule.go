package dto

import "time"

type ScheduleUpdateRequest struct {
	Expression string `json:"expression"`
}

type ScheduleResponse struct {
	Expression  string    `json:"expression"`
	LastUpdated time.Time `json:"lastUpdated"`
}
