package models

import "time"

// ActivityKind — тип спортивного события, значения совпадают с ENUM в БД.
// Значения исторические (испанские), менять нельзя — их знает фронтенд.
type ActivityKind string

const (
	KindTraining   ActivityKind = "ENTRENAMIENTO"
	KindMatch      ActivityKind = "PARTIDO"
	KindTournament ActivityKind = "TORNEO"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case KindTraining, KindMatch, KindTournament:
		return true
	}
	return false
}

// Activity is a scheduled club event for one or more teams. Start/end times
// are optional: a date-only activity is legal and skips time-overlap checks.
type Activity struct {
	ID           int          `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	Kind         ActivityKind `json:"kind" db:"kind"`
	StartDate    time.Time    `json:"start_date" db:"start_date"`
	EndDate      time.Time    `json:"end_date" db:"end_date"`
	StartTime    *time.Time   `json:"start_time,omitempty" db:"start_time"`
	EndTime      *time.Time   `json:"end_time,omitempty" db:"end_time"`
	Description  *string      `json:"description,omitempty" db:"description"`
	CoachID      *int         `json:"coach_id,omitempty" db:"coach_id"`
	Canceled     bool         `json:"canceled" db:"canceled"`
	CancelReason *string      `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	Teams []Team   `json:"teams,omitempty" db:"-"`
	Coach *Profile `json:"coach,omitempty" db:"-"`
}

// TeamIDs возвращает ID участвующих команд (для детектора конфликтов).
func (a Activity) TeamIDs() []int {
	ids := make([]int, 0, len(a.Teams))
	for _, t := range a.Teams {
		ids = append(ids, t.ID)
	}
	return ids
}
