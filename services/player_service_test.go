package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sur-voley/club-system/eligibility"
	"github.com/sur-voley/club-system/models"
)

func newPlayerFixture(policy eligibility.Policy) *playerService {
	profileRepo := &fakeProfileRepo{profiles: map[int]*models.Profile{
		7: {ID: 7, FirstName: "Sofia", LastName: "Paredes", Role: models.RolePlayer, Active: true},
	}}
	teamRepo := &fakeTeamRepo{teams: map[int]*models.Team{
		10: {
			ID:         10,
			Name:       "Sub 14 Damas",
			CategoryID: 1,
			CoachID:    50,
			Category:   &models.Category{ID: 1, Slug: "sub-14"},
		},
	}}
	playerRepo := &fakePlayerRepo{players: map[int]*models.Player{}}

	return &playerService{
		playerRepo:  playerRepo,
		profileRepo: profileRepo,
		teamRepo:    teamRepo,
		policy:      policy,
		now: func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestCreatePlayerEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("age outside cutoff range rejected", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCutoff)

		// Родилась 2009-03-01: на 31-12-2024 ей 15 — вне диапазона 12-14.
		birth := time.Date(2009, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.CreatePlayer(ctx, PlayerInput{
			ProfileID: 7,
			TeamID:    intPtr(10),
			BirthDate: &birth,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
		if _, ok := vErr.Fields["team_id"]; !ok {
			t.Errorf("validation fields = %v, want team_id key", vErr.Fields)
		}
	})

	t.Run("age inside cutoff range accepted", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCutoff)

		// Родилась 2011-06-15: на 31-12-2024 ей 13 — внутри 12-14.
		birth := time.Date(2011, 6, 15, 0, 0, 0, 0, time.UTC)
		player, err := svc.CreatePlayer(ctx, PlayerInput{
			ProfileID: 7,
			TeamID:    intPtr(10),
			BirthDate: &birth,
		})
		if err != nil {
			t.Fatalf("CreatePlayer returned error: %v", err)
		}
		if player.TeamID == nil || *player.TeamID != 10 {
			t.Errorf("player team = %v, want 10", player.TeamID)
		}
	})

	t.Run("missing birth date skips the check", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCutoff)

		_, err := svc.CreatePlayer(ctx, PlayerInput{
			ProfileID: 7,
			TeamID:    intPtr(10),
		})
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			t.Errorf("got validation error %v, want check skipped", vErr)
		}
	})

	t.Run("current policy applies today-based maximum", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCurrent)

		// Родилась 2010-06-01: на 2025-06-15 ей 15 — выше максимума 14.
		birth := time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.CreatePlayer(ctx, PlayerInput{
			ProfileID: 7,
			TeamID:    intPtr(10),
			BirthDate: &birth,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
	})

	t.Run("unknown profile rejected", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCutoff)

		_, err := svc.CreatePlayer(ctx, PlayerInput{ProfileID: 404})
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("err = %v, want ErrProfileNotFound", err)
		}
	})

	t.Run("invalid blood type rejected", func(t *testing.T) {
		svc := newPlayerFixture(eligibility.PolicyCutoff)

		bad := models.BloodType("Z+")
		_, err := svc.CreatePlayer(ctx, PlayerInput{
			ProfileID: 7,
			BloodType: &bad,
		})
		if !errors.Is(err, ErrInvalidBloodType) {
			t.Errorf("err = %v, want ErrInvalidBloodType", err)
		}
	})
}
