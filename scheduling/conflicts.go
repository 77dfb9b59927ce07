// Package scheduling detects clashes between a proposed activity and the
// club's existing schedule before anything is persisted. It only reports;
// the caller decides whether a conflict blocks the save.
//
// Two rules co-exist, matching how the club actually plans:
//
//   - same-day-same-kind: a team cannot have two activities of the same kind
//     on the same start date, regardless of times;
//   - time overlap: when both sides carry start/end times on the same date,
//     half-open intervals that overlap clash — separately for shared teams
//     and for a double-booked coach. A coach is busy both where they are the
//     responsible coach and where any team they direct is playing.
//
// Date-only activities never enter the time rule. All functions are pure.
package scheduling

import (
	"sort"
	"time"

	"github.com/sur-voley/club-system/models"
)

type ConflictKind string

const (
	ConflictTeam  ConflictKind = "team"
	ConflictCoach ConflictKind = "coach"
)

// Candidate описывает проверяемую активность до сохранения.
// ActivityID заполняется при редактировании, чтобы исключить саму запись.
type Candidate struct {
	ActivityID *int
	Kind       models.ActivityKind
	Date       time.Time
	StartTime  *time.Time
	EndTime    *time.Time
	TeamIDs    []int
	CoachID    *int
}

// Conflict names the clashing activity; Teams carries the shared teams for
// team conflicts and stays nil for coach conflicts.
type Conflict struct {
	Activity *models.Activity `json:"activity"`
	Kind     ConflictKind     `json:"kind"`
	Teams    []models.Team    `json:"teams,omitempty"`
}

// FindConflicts scans the existing schedule and reports every conflict with
// the candidate. The result is deterministic: activities are visited in ID
// order and each (activity, kind) pair is reported at most once. Canceled
// activities do not count.
func FindConflicts(c Candidate, existing []models.Activity) []Conflict {
	ordered := make([]models.Activity, len(existing))
	copy(ordered, existing)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var conflicts []Conflict
	for i := range ordered {
		e := &ordered[i]
		if c.ActivityID != nil && e.ID == *c.ActivityID {
			continue
		}
		if e.Canceled {
			continue
		}
		if !sameDate(c.Date, e.StartDate) {
			continue
		}

		shared := sharedTeams(c.TeamIDs, e.Teams)

		teamConflict := false
		if c.Kind == e.Kind && len(shared) > 0 {
			// Правило "один вид активности в день" — время не учитывается.
			teamConflict = true
		} else if len(shared) > 0 && timedOverlap(c, e) {
			teamConflict = true
		}
		if teamConflict {
			conflicts = append(conflicts, Conflict{Activity: e, Kind: ConflictTeam, Teams: shared})
		}

		if c.CoachID != nil && timedOverlap(c, e) && coachInvolved(*c.CoachID, e) {
			conflicts = append(conflicts, Conflict{Activity: e, Kind: ConflictCoach})
		}
	}
	return conflicts
}

// AvailableCoaches returns, sorted, the IDs of the active coaches that the
// time-overlap rule would not double-book on the candidate's date. For a
// date-only candidate every active coach is available.
func AvailableCoaches(c Candidate, coaches []models.Profile, existing []models.Activity) []int {
	var available []int
	for _, coach := range coaches {
		if !coach.Active || coach.Role != models.RoleCoach {
			continue
		}
		busy := false
		for i := range existing {
			e := &existing[i]
			if c.ActivityID != nil && e.ID == *c.ActivityID {
				continue
			}
			if e.Canceled || !sameDate(c.Date, e.StartDate) {
				continue
			}
			if timedOverlap(c, e) && coachInvolved(coach.ID, e) {
				busy = true
				break
			}
		}
		if !busy {
			available = append(available, coach.ID)
		}
	}
	sort.Ints(available)
	return available
}

// coachInvolved reports whether the coach is tied to the activity, either as
// the responsible coach or as the director of a participating team.
func coachInvolved(coachID int, e *models.Activity) bool {
	if e.CoachID != nil && *e.CoachID == coachID {
		return true
	}
	for _, t := range e.Teams {
		if t.CoachID == coachID {
			return true
		}
	}
	return false
}

// timedOverlap applies the half-open interval rule. Either side missing a
// start or end time opts the pair out of the time rule entirely.
func timedOverlap(c Candidate, e *models.Activity) bool {
	if c.StartTime == nil || c.EndTime == nil || e.StartTime == nil || e.EndTime == nil {
		return false
	}
	cs, ce := minuteOfDay(*c.StartTime), minuteOfDay(*c.EndTime)
	es, ee := minuteOfDay(*e.StartTime), minuteOfDay(*e.EndTime)
	// Касание границ (cs == ee или ce == es) конфликтом не считается.
	return cs < ee && es < ce
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func sharedTeams(candidateTeams []int, existingTeams []models.Team) []models.Team {
	if len(candidateTeams) == 0 || len(existingTeams) == 0 {
		return nil
	}
	want := make(map[int]bool, len(candidateTeams))
	for _, id := range candidateTeams {
		want[id] = true
	}
	var shared []models.Team
	for _, t := range existingTeams {
		if want[t.ID] {
			shared = append(shared, t)
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].ID < shared[j].ID })
	return shared
}
