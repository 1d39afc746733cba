package models

import "time"

// Answer is a question/answer exchange attached to an item. GivenBy is the
// author, BelongsTo the recipient. Response holds the optional confirmation
// state set later by the recipient.
type Answer struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	GivenBy   string    `json:"givenBy"`
	BelongsTo string    `json:"belongsTo"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
