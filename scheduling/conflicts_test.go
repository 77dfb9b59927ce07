package scheduling

import (
	"testing"
	"time"

	"github.com/sur-voley/club-system/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) *time.Time {
	t := time.Date(0, time.January, 1, h, m, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

func team(id int, name string, coachID int) models.Team {
	return models.Team{ID: id, Name: name, CoachID: coachID}
}

func activity(id int, kind models.ActivityKind, date time.Time, teams ...models.Team) models.Activity {
	return models.Activity{ID: id, Kind: kind, StartDate: date, EndDate: date, Teams: teams}
}

// An existing PARTIDO for T1 on the same date blocks another
// PARTIDO for T1, and the conflict names the shared team.
func TestSameDaySameKindConflict(t *testing.T) {
	t1 := team(1, "T1", 10)
	existing := []models.Activity{activity(100, models.KindMatch, day(2025, time.May, 1), t1)}

	candidate := Candidate{
		Kind:    models.KindMatch,
		Date:    day(2025, time.May, 1),
		TeamIDs: []int{1},
	}

	conflicts := FindConflicts(candidate, existing)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Kind != ConflictTeam {
		t.Errorf("kind = %q, want team", c.Kind)
	}
	if c.Activity.ID != 100 {
		t.Errorf("conflicting activity = %d, want 100", c.Activity.ID)
	}
	if len(c.Teams) != 1 || c.Teams[0].Name != "T1" {
		t.Errorf("conflict does not name the shared team: %+v", c.Teams)
	}
}

// The same-day-same-kind rule is date-only: non-overlapping times on the
// same date still conflict.
func TestSameDaySameKindIgnoresTimes(t *testing.T) {
	t1 := team(1, "T1", 10)
	e := activity(100, models.KindTraining, day(2025, time.May, 1), t1)
	e.StartTime, e.EndTime = clock(8, 0), clock(9, 0)

	candidate := Candidate{
		Kind:      models.KindTraining,
		Date:      day(2025, time.May, 1),
		StartTime: clock(18, 0),
		EndTime:   clock(19, 0),
		TeamIDs:   []int{1},
	}

	if got := FindConflicts(candidate, []models.Activity{e}); len(got) != 1 {
		t.Fatalf("got %d conflicts, want 1 despite disjoint times", len(got))
	}
}

func TestDifferentKindNeedsTimeOverlap(t *testing.T) {
	t1 := team(1, "T1", 10)

	// Date-only on both sides, different kinds: no rule applies.
	e := activity(100, models.KindTraining, day(2025, time.May, 1), t1)
	candidate := Candidate{Kind: models.KindMatch, Date: day(2025, time.May, 1), TeamIDs: []int{1}}
	if got := FindConflicts(candidate, []models.Activity{e}); len(got) != 0 {
		t.Fatalf("date-only different-kind pair must not conflict, got %+v", got)
	}

	// Same pair with overlapping times conflicts through the time rule.
	e.StartTime, e.EndTime = clock(10, 0), clock(11, 0)
	candidate.StartTime, candidate.EndTime = clock(10, 30), clock(11, 30)
	got := FindConflicts(candidate, []models.Activity{e})
	if len(got) != 1 || got[0].Kind != ConflictTeam {
		t.Fatalf("expected one team conflict, got %+v", got)
	}
}

func TestTouchingBoundariesDoNotConflict(t *testing.T) {
	t1 := team(1, "T1", 10)
	e := activity(100, models.KindTraining, day(2025, time.May, 1), t1)
	e.StartTime, e.EndTime = clock(9, 0), clock(10, 0)

	candidate := Candidate{
		Kind:      models.KindMatch,
		Date:      day(2025, time.May, 1),
		StartTime: clock(10, 0), // starts exactly when the other ends
		EndTime:   clock(11, 0),
		TeamIDs:   []int{1},
	}

	if got := FindConflicts(candidate, []models.Activity{e}); len(got) != 0 {
		t.Fatalf("touching intervals must not conflict, got %+v", got)
	}
}

// Coach C directs team T2. An activity for T2 at 10:00-11:00
// makes C busy, so a candidate naming C as responsible at 10:30-11:30
// conflicts even though C is not the responsible coach of the existing one.
func TestCoachBusyThroughDirectedTeam(t *testing.T) {
	t2 := team(2, "T2", 7) // coach 7 directs T2
	e := activity(200, models.KindTraining, day(2025, time.May, 1), t2)
	e.StartTime, e.EndTime = clock(10, 0), clock(11, 0)

	candidate := Candidate{
		Kind:      models.KindMatch,
		Date:      day(2025, time.May, 1),
		StartTime: clock(10, 30),
		EndTime:   clock(11, 30),
		TeamIDs:   []int{5}, // no team overlap
		CoachID:   intPtr(7),
	}

	conflicts := FindConflicts(candidate, []models.Activity{e})
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].Kind != ConflictCoach {
		t.Errorf("kind = %q, want coach", conflicts[0].Kind)
	}
	if conflicts[0].Teams != nil {
		t.Errorf("coach conflicts carry no team list, got %+v", conflicts[0].Teams)
	}
}

func TestCoachConflictAsResponsible(t *testing.T) {
	e := activity(200, models.KindTraining, day(2025, time.May, 1), team(2, "T2", 99))
	e.CoachID = intPtr(7)
	e.StartTime, e.EndTime = clock(10, 0), clock(11, 0)

	candidate := Candidate{
		Kind:      models.KindMatch,
		Date:      day(2025, time.May, 1),
		StartTime: clock(9, 30),
		EndTime:   clock(10, 30),
		TeamIDs:   []int{5},
		CoachID:   intPtr(7),
	}

	conflicts := FindConflicts(candidate, []models.Activity{e})
	if len(conflicts) != 1 || conflicts[0].Kind != ConflictCoach {
		t.Fatalf("expected a coach conflict, got %+v", conflicts)
	}
}

// If A conflicts with B under the time rule, B run as the candidate against
// {A} reports the conflict too.
func TestTimeOverlapIsSymmetric(t *testing.T) {
	t1 := team(1, "T1", 10)

	a := activity(1, models.KindTraining, day(2025, time.May, 1), t1)
	a.StartTime, a.EndTime = clock(10, 0), clock(12, 0)
	b := activity(2, models.KindMatch, day(2025, time.May, 1), t1)
	b.StartTime, b.EndTime = clock(11, 0), clock(13, 0)

	asCandidate := func(x models.Activity) Candidate {
		return Candidate{
			ActivityID: &x.ID,
			Kind:       x.Kind,
			Date:       x.StartDate,
			StartTime:  x.StartTime,
			EndTime:    x.EndTime,
			TeamIDs:    x.TeamIDs(),
		}
	}

	first := FindConflicts(asCandidate(a), []models.Activity{b})
	second := FindConflicts(asCandidate(b), []models.Activity{a})
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("overlap must be symmetric: %d vs %d conflicts", len(first), len(second))
	}
}

func TestEditExcludesItselfAndCanceled(t *testing.T) {
	t1 := team(1, "T1", 10)

	self := activity(300, models.KindMatch, day(2025, time.May, 1), t1)
	canceled := activity(301, models.KindMatch, day(2025, time.May, 1), t1)
	canceled.Canceled = true

	candidate := Candidate{
		ActivityID: intPtr(300),
		Kind:       models.KindMatch,
		Date:       day(2025, time.May, 1),
		TeamIDs:    []int{1},
	}

	if got := FindConflicts(candidate, []models.Activity{self, canceled}); len(got) != 0 {
		t.Fatalf("self and canceled activities must not conflict, got %+v", got)
	}
}

// Reports all conflicts, not just the first, in activity ID order regardless
// of input order.
func TestFindConflictsIsOrderIndependent(t *testing.T) {
	t1 := team(1, "T1", 10)
	e1 := activity(101, models.KindMatch, day(2025, time.May, 1), t1)
	e2 := activity(102, models.KindMatch, day(2025, time.May, 1), t1)

	candidate := Candidate{Kind: models.KindMatch, Date: day(2025, time.May, 1), TeamIDs: []int{1}}

	forward := FindConflicts(candidate, []models.Activity{e1, e2})
	reversed := FindConflicts(candidate, []models.Activity{e2, e1})

	if len(forward) != 2 || len(reversed) != 2 {
		t.Fatalf("want both conflicts reported: %d and %d", len(forward), len(reversed))
	}
	for i := range forward {
		if forward[i].Activity.ID != reversed[i].Activity.ID {
			t.Errorf("order differs at %d: %d vs %d", i, forward[i].Activity.ID, reversed[i].Activity.ID)
		}
	}
	if forward[0].Activity.ID != 101 || forward[1].Activity.ID != 102 {
		t.Errorf("conflicts not in ID order: %d, %d", forward[0].Activity.ID, forward[1].Activity.ID)
	}
}

func TestAvailableCoaches(t *testing.T) {
	coaches := []models.Profile{
		{ID: 7, Role: models.RoleCoach, Active: true},
		{ID: 8, Role: models.RoleCoach, Active: true},
		{ID: 9, Role: models.RoleCoach, Active: false}, // inactive, never offered
	}

	// Coach 7 directs T2, busy 10:00-11:00.
	e := activity(200, models.KindTraining, day(2025, time.May, 1), team(2, "T2", 7))
	e.StartTime, e.EndTime = clock(10, 0), clock(11, 0)

	candidate := Candidate{
		Kind:      models.KindMatch,
		Date:      day(2025, time.May, 1),
		StartTime: clock(10, 30),
		EndTime:   clock(11, 30),
	}

	got := AvailableCoaches(candidate, coaches, []models.Activity{e})
	if len(got) != 1 || got[0] != 8 {
		t.Fatalf("available = %v, want [8]", got)
	}

	// Date-only candidate: the time rule is skipped, both active coaches free.
	got = AvailableCoaches(Candidate{Kind: models.KindMatch, Date: day(2025, time.May, 1)}, coaches, []models.Activity{e})
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Fatalf("available = %v, want [7 8]", got)
	}
}
