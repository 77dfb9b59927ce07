package models

import "time"

type Team struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CategoryID int       `json:"category_id" db:"category_id"`
	CoachID    int       `json:"coach_id" db:"coach_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Category *Category `json:"category,omitempty" db:"-"`
	Coach    *Profile  `json:"coach,omitempty" db:"-"`
	Players  []Player  `json:"players,omitempty" db:"-"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`
}
