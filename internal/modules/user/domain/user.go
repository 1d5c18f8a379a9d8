package domain

import "time"

// User is someone who has talked to the management bot.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
