package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sur-voley/club-system/models"
)

func newActivityFixture() *activityService {
	profileRepo := &fakeProfileRepo{profiles: map[int]*models.Profile{
		50: {ID: 50, FirstName: "Carla", LastName: "Rojas", Role: models.RoleCoach, Active: true},
		51: {ID: 51, FirstName: "Pedro", LastName: "Soto", Role: models.RoleMember, Active: true},
		52: {ID: 52, FirstName: "Ana", LastName: "Vega", Role: models.RoleCoach, Active: true},
	}}
	activityRepo := &fakeActivityRepo{activities: map[int]*models.Activity{
		3: {
			ID:           3,
			Title:        "Torneo suspendido",
			Kind:         models.KindTournament,
			StartDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
			Canceled:     true,
			CancelReason: strPtr("sin rivales"),
		},
	}}

	return &activityService{
		activityRepo: activityRepo,
		profileRepo:  profileRepo,
		logger:       slog.Default(),
		now:          time.Now,
	}
}

func validActivityInput() ActivityInput {
	start := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	return ActivityInput{
		Title:     "Entrenamiento general",
		Kind:      models.KindTraining,
		StartDate: start,
		TeamIDs:   []int{10},
	}
}

func TestCreateActivityValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*ActivityInput)
		wantErr error
	}{
		{
			name:    "missing title",
			mutate:  func(in *ActivityInput) { in.Title = "" },
			wantErr: ErrActivityTitleRequired,
		},
		{
			name:    "unknown kind",
			mutate:  func(in *ActivityInput) { in.Kind = models.ActivityKind("AMISTOSO") },
			wantErr: ErrActivityKindInvalid,
		},
		{
			name:    "no teams",
			mutate:  func(in *ActivityInput) { in.TeamIDs = nil },
			wantErr: ErrActivityTeamsRequired,
		},
		{
			name: "end date before start date",
			mutate: func(in *ActivityInput) {
				in.EndDate = in.StartDate.AddDate(0, 0, -1)
			},
			wantErr: ErrActivityInvalidDateRange,
		},
		{
			name: "start time without end time",
			mutate: func(in *ActivityInput) {
				in.StartTime = timePtr(time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC))
			},
			wantErr: ErrActivityTimesIncomplete,
		},
		{
			name: "end time not after start time",
			mutate: func(in *ActivityInput) {
				in.StartTime = timePtr(time.Date(0, 1, 1, 11, 0, 0, 0, time.UTC))
				in.EndTime = timePtr(time.Date(0, 1, 1, 11, 0, 0, 0, time.UTC))
			},
			wantErr: ErrActivityInvalidTimeRange,
		},
		{
			name:    "responsible profile is not a coach",
			mutate:  func(in *ActivityInput) { in.CoachID = intPtr(51) },
			wantErr: ErrCoachRoleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newActivityFixture()
			input := validActivityInput()
			tt.mutate(&input)

			_, err := svc.CreateActivity(ctx, input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateActivity err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancelActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("reason required", func(t *testing.T) {
		svc := newActivityFixture()
		if _, err := svc.CancelActivity(ctx, 3, ""); !errors.Is(err, ErrCancelReasonRequired) {
			t.Errorf("err = %v, want ErrCancelReasonRequired", err)
		}
	})

	t.Run("already canceled", func(t *testing.T) {
		svc := newActivityFixture()
		if _, err := svc.CancelActivity(ctx, 3, "cambio de sede"); !errors.Is(err, ErrActivityCanceled) {
			t.Errorf("err = %v, want ErrActivityCanceled", err)
		}
	})

	t.Run("unknown activity", func(t *testing.T) {
		svc := newActivityFixture()
		if _, err := svc.CancelActivity(ctx, 404, "motivo"); !errors.Is(err, ErrActivityNotFound) {
			t.Errorf("err = %v, want ErrActivityNotFound", err)
		}
	})
}

func TestAvailableCoaches(t *testing.T) {
	ctx := context.Background()
	svc := newActivityFixture()

	date := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	// Тренер 50 занят активностью 10:00-12:00 в этот день.
	svc.activityRepo.(*fakeActivityRepo).onDate = []models.Activity{
		{
			ID:        7,
			Title:     "Partido liga",
			Kind:      models.KindMatch,
			StartDate: date,
			EndDate:   date,
			StartTime: timePtr(time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC)),
			EndTime:   timePtr(time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC)),
			CoachID:   intPtr(50),
			Teams:     []models.Team{{ID: 20}},
		},
	}

	input := ActivityInput{
		Kind:      models.KindTraining,
		StartDate: date,
		StartTime: timePtr(time.Date(0, 1, 1, 11, 0, 0, 0, time.UTC)),
		EndTime:   timePtr(time.Date(0, 1, 1, 13, 0, 0, 0, time.UTC)),
		TeamIDs:   []int{10},
	}

	coaches, err := svc.AvailableCoaches(ctx, input)
	if err != nil {
		t.Fatalf("AvailableCoaches returned error: %v", err)
	}
	if len(coaches) != 1 {
		t.Fatalf("got %d coaches, want 1", len(coaches))
	}
	if coaches[0].ID != 52 {
		t.Errorf("available coach = %d, want 52", coaches[0].ID)
	}

	// При редактировании той же активности её тренер снова свободен: запись
	// исключается из проверки по activity_id.
	input.ActivityID = intPtr(7)
	coaches, err = svc.AvailableCoaches(ctx, input)
	if err != nil {
		t.Fatalf("AvailableCoaches returned error: %v", err)
	}
	if len(coaches) != 2 {
		t.Fatalf("got %d coaches after exclusion, want 2", len(coaches))
	}
}
