package models

import "time"

// MaxItemLength bounds ListItem.Text, counted in runes.
const MaxItemLength = 500

// ListItem is one entry on a user's grocery list
type ListItem struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Text      string    `json:"text" db:"text"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemRequest carries the text submitted by the add and update forms
type ItemRequest struct {
	Text string `form:"content" validate:"required,max=500"`
}
