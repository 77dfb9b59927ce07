package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sur-voley/club-system/models"
)

func newAttendanceFixture() (*attendanceService, *fakeAttendanceRepo) {
	activityDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	activityRepo := &fakeActivityRepo{activities: map[int]*models.Activity{
		1: {
			ID:        1,
			Title:     "Entrenamiento semanal",
			Kind:      models.KindTraining,
			StartDate: activityDate,
			EndDate:   activityDate,
			Teams:     []models.Team{{ID: 10}},
		},
		2: {
			ID:           2,
			Title:        "Partido suspendido",
			Kind:         models.KindMatch,
			StartDate:    activityDate,
			EndDate:      activityDate,
			Canceled:     true,
			CancelReason: strPtr("lluvia"),
			Teams:        []models.Team{{ID: 10}},
		},
	}}
	playerRepo := &fakePlayerRepo{players: map[int]*models.Player{
		100: {ID: 100, ProfileID: 7, TeamID: intPtr(10), Active: true},
		101: {ID: 101, ProfileID: 8, TeamID: intPtr(99), Active: true},
		102: {ID: 102, ProfileID: 9, TeamID: intPtr(10), Active: false},
	}}
	profileRepo := &fakeProfileRepo{profiles: map[int]*models.Profile{
		50: {ID: 50, Role: models.RoleCoach, Active: true},
		51: {ID: 51, Role: models.RoleMember, Active: true},
	}}
	attendanceRepo := &fakeAttendanceRepo{}

	svc := &attendanceService{
		attendanceRepo: attendanceRepo,
		activityRepo:   activityRepo,
		playerRepo:     playerRepo,
		profileRepo:    profileRepo,
		now: func() time.Time {
			return time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)
		},
	}
	return svc, attendanceRepo
}

func strPtr(s string) *string { return &s }

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("valid mark succeeds", func(t *testing.T) {
		svc, repo := newAttendanceFixture()

		got, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   100,
			ActivityID: 1,
			Status:     models.AttendancePresent,
		}, 50)
		if err != nil {
			t.Fatalf("MarkAttendance returned error: %v", err)
		}
		if got.Status != models.AttendancePresent {
			t.Errorf("status = %q, want %q", got.Status, models.AttendancePresent)
		}
		if repo.created == nil {
			t.Fatal("attendance was not persisted")
		}
		if repo.created.CoachID != 50 {
			t.Errorf("coach_id = %d, want 50", repo.created.CoachID)
		}
	})

	t.Run("canceled activity rejected", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   100,
			ActivityID: 2,
			Status:     models.AttendancePresent,
		}, 50)
		if !errors.Is(err, ErrActivityCanceled) {
			t.Errorf("err = %v, want ErrActivityCanceled", err)
		}
	})

	t.Run("player from another team rejected with field error", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   101,
			ActivityID: 1,
			Status:     models.AttendanceAbsent,
		}, 50)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
		if _, ok := vErr.Fields["player_id"]; !ok {
			t.Errorf("validation fields = %v, want player_id key", vErr.Fields)
		}
	})

	t.Run("inactive player rejected", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   102,
			ActivityID: 1,
			Status:     models.AttendancePresent,
		}, 50)
		if !errors.Is(err, ErrPlayerDisabled) {
			t.Errorf("err = %v, want ErrPlayerDisabled", err)
		}
	})

	t.Run("non-coach recorder rejected", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   100,
			ActivityID: 1,
			Status:     models.AttendancePresent,
		}, 51)
		if !errors.Is(err, ErrCoachRoleRequired) {
			t.Errorf("err = %v, want ErrCoachRoleRequired", err)
		}
	})

	t.Run("marked_at outside activity dates rejected", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		early := time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC)
		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   100,
			ActivityID: 1,
			Status:     models.AttendancePresent,
			MarkedAt:   &early,
		}, 50)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
		if _, ok := vErr.Fields["marked_at"]; !ok {
			t.Errorf("validation fields = %v, want marked_at key", vErr.Fields)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, err := svc.MarkAttendance(ctx, MarkAttendanceInput{
			PlayerID:   100,
			ActivityID: 1,
			Status:     models.AttendanceStatus("X"),
		}, 50)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
	})
}
