package model

import "time"

// Alumni is a former student in the placement network. Email is the natural key.
type Alumni struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	LinkedIn  string    `json:"linkedin"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
