package model

import "time"

// User represents a registered user. The username is the identity the rest of
// the system keys on; the numeric id stays internal to storage.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
