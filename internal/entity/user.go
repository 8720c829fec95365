package entity

import "time"

// User is a registered account. Password holds whatever the configured
// password hasher produced: the raw secret in plain mode, a bcrypt hash otherwise.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}
