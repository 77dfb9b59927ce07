package models

import "time"

// Category — возрастная категория команды ("sub-14", "adulto", "mixto" и т.д.).
type Category struct {
	ID          int       `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
