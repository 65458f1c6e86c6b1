package model

import "time"

type FetchStatus string

const (
	FetchOK    FetchStatus = "ok"
	FetchError FetchStatus = "error"
)

// FetchRecord is one attempt to load the house catalog from upstream.
type FetchRecord struct {
	ID         int64       `json:"id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Status     FetchStatus `json:"status"`
	HouseCount int         `json:"house_count"`
	Error      string      `json:"error,omitempty"`
}
