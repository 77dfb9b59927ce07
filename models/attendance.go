package models

import "time"

// AttendanceStatus хранится одной буквой, как в исходной схеме клуба.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "P"
	AttendanceAbsent  AttendanceStatus = "A"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// Attendance — отметка посещаемости, уникальна по паре (player, activity).
type Attendance struct {
	ID         int              `json:"id" db:"id"`
	PlayerID   int              `json:"player_id" db:"player_id"`
	ActivityID int              `json:"activity_id" db:"activity_id"`
	CoachID    int              `json:"coach_id" db:"coach_id"`
	Status     AttendanceStatus `json:"status" db:"status"`
	MarkedAt   time.Time        `json:"marked_at" db:"marked_at"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	Player   *Player   `json:"player,omitempty" db:"-"`
	Activity *Activity `json:"activity,omitempty" db:"-"`
	Coach    *Profile  `json:"coach,omitempty" db:"-"`
}
