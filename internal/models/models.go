package models

import "time"

type User struct {
	ID        int64
	Username  string
	Email     string
	PassHash  string
	IsAdmin   bool
	CreatedAt time.Time
}

// * UserUpdate описывает частичное обновление профиля.
// nil-поле означает "оставить как есть".
type UserUpdate struct {
	Username *string
	Email    *string
	PassHash *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PassHash == nil
}

type Event struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
