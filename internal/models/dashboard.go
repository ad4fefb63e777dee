package models

import "time"

// DashboardStats aggregates counts for the admin dashboard.
type DashboardStats struct {
	UsersByRole    map[UserRole]int                      `json:"users_by_role"`
	RequestsByType map[RequestType]map[RequestStatus]int `json:"requests_by_type"`
	GeneratedAt    time.Time                             `json:"generated_at"`
}
