package models

import "time"

type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

func (b BloodType) Valid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

// Player — спортивный профиль 1:1 с Profile (роль player).
// Команда и дата рождения опциональны: без них проверка возраста пропускается.
type Player struct {
	ID        int        `json:"id" db:"id"`
	ProfileID int        `json:"profile_id" db:"profile_id"`
	TeamID    *int       `json:"team_id,omitempty" db:"team_id"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	BloodType *BloodType `json:"blood_type,omitempty" db:"blood_type"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	Profile *Profile `json:"profile,omitempty" db:"-"`
	Team    *Team    `json:"team,omitempty" db:"-"`
}
