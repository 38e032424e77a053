package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Age       *float64  `json:"age"`
	Gender    string    `json:"gender"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Quota struct {
	UserID          string    `json:"userId"`
	Plan            string    `json:"plan"`
	TokensRemaining int       `json:"tokensRemaining"`
	PeriodType      string    `json:"periodType"`
	ResetAt         time.Time `json:"resetAt"`
}

// Document is the entire persisted state, loaded and saved as one unit.
type Document struct {
	Users    []User    `json:"users"`
	Profiles []Profile `json:"profiles"`
	Quotas   []Quota   `json:"quotas"`
}
