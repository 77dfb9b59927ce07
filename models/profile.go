package models

import (
	"strings"
	"time"
)

// ProfileRole представляет роль учетной записи, соответствует ENUM в БД.
type ProfileRole string

const (
	RoleAdmin     ProfileRole = "admin"
	RoleTeamAdmin ProfileRole = "team_admin"
	RoleCoach     ProfileRole = "coach"
	RolePlayer    ProfileRole = "player"
	RoleMember    ProfileRole = "member"
)

func (r ProfileRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamAdmin, RoleCoach, RolePlayer, RoleMember:
		return true
	}
	return false
}

// Profile is the club account: credentials plus the personal data the club
// keeps for every member (RUN is the Chilean national ID, unique).
type Profile struct {
	ID             int         `json:"id" db:"id"`
	Role           ProfileRole `json:"role" db:"role"`
	RUN            string      `json:"run" db:"run"`
	Email          string      `json:"email" db:"email"`
	Phone          *string     `json:"phone,omitempty" db:"phone"`
	FirstName      string      `json:"first_name" db:"first_name"`
	MiddleName     *string     `json:"middle_name,omitempty" db:"middle_name"`
	LastName       string      `json:"last_name" db:"last_name"`
	SecondLastName string      `json:"second_last_name" db:"second_last_name"`
	PasswordHash   string      `json:"-" db:"password_hash"`
	Active         bool        `json:"active" db:"active"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}

func (p Profile) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != nil && *p.MiddleName != "" {
		parts = append(parts, *p.MiddleName)
	}
	parts = append(parts, p.LastName)
	if p.SecondLastName != "" {
		parts = append(parts, p.SecondLastName)
	}
	return strings.Join(parts, " ")
}
