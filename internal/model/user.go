package model

import "time"

// User is an application user, created on first login with a given
// name and immutable afterwards. The name is a free-text lookup key;
// login treats the first match as canonical.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
