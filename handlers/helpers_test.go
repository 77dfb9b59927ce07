package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/scheduling"
)

// Командный конфликт должен отдавать ID общих команд, тренерский — без них.
func TestScheduleConflictResponse(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	conflicts := []scheduling.Conflict{
		{
			Activity: &models.Activity{ID: 100, Title: "Partido liga", StartDate: date},
			Kind:     scheduling.ConflictTeam,
			Teams:    []models.Team{{ID: 1, Name: "Sub-14 A"}, {ID: 3, Name: "Sub-14 B"}},
		},
		{
			Activity: &models.Activity{ID: 200, Title: "Entrenamiento", StartDate: date},
			Kind:     scheduling.ConflictCoach,
		},
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activities", nil)
	scheduleConflictResponse(w, r, conflicts)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var body struct {
		Error     string `json:"error"`
		Conflicts []struct {
			ActivityID int    `json:"activity_id"`
			Title      string `json:"title"`
			Kind       string `json:"kind"`
			TeamIDs    []int  `json:"team_ids"`
		} `json:"conflicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error == "" {
		t.Error("error message is empty")
	}
	if len(body.Conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2", len(body.Conflicts))
	}

	teamConflict := body.Conflicts[0]
	if teamConflict.ActivityID != 100 || teamConflict.Kind != "team" {
		t.Errorf("team conflict = %+v", teamConflict)
	}
	if len(teamConflict.TeamIDs) != 2 || teamConflict.TeamIDs[0] != 1 || teamConflict.TeamIDs[1] != 3 {
		t.Errorf("team_ids = %v, want [1 3]", teamConflict.TeamIDs)
	}

	coachConflict := body.Conflicts[1]
	if coachConflict.ActivityID != 200 || coachConflict.Kind != "coach" {
		t.Errorf("coach conflict = %+v", coachConflict)
	}
	if coachConflict.TeamIDs != nil {
		t.Errorf("coach conflict carries team_ids %v", coachConflict.TeamIDs)
	}
}
