package model

import "time"

// Session is one browser session. Only the hash of the cookie token is kept.
type Session struct {
	ID         int64     `json:"id"`
	Token      string    `json:"-"`
	TokenHash  string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
