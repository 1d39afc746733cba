package models

import "time"

// Picture is a stored-file reference produced by the upload adapter.
type Picture struct {
	Img string `json:"img"`
}

// Item is a marketplace listing. Pictures keeps upload order.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Question    string    `json:"question,omitempty"`
	Type        string    `json:"type"`
	CreatedBy   string    `json:"createdBy"`
	Pictures    []Picture `json:"itemPictures"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
