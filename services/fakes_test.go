package services

import (
	"context"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
)

// Минимальные фейки репозиториев для тестов сервисов. Нереализованные
// методы возвращают not-found, чтобы случайный вызов был виден в тесте.

type fakeProfileRepo struct {
	profiles map[int]*models.Profile
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByRUN(ctx context.Context, run string) (*models.Profile, error) {
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) List(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) ListCoaches(ctx context.Context, onlyActive bool) ([]models.Profile, error) {
	var coaches []models.Profile
	for _, p := range f.profiles {
		if p.Role == models.RoleCoach && (!onlyActive || p.Active) {
			coaches = append(coaches, *p)
		}
	}
	return coaches, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	return nil
}

func (f *fakeProfileRepo) SetActive(ctx context.Context, id int, active bool) error {
	return nil
}

func (f *fakeProfileRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	return nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
}

func (f *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	player.ID = len(f.players) + 1
	cp := *player
	f.players[player.ID] = &cp
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	if p, ok := f.players[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) GetByProfileID(ctx context.Context, profileID int) (*models.Player, error) {
	for _, p := range f.players {
		if p.ProfileID == profileID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) List(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	return nil, nil
}

func (f *fakePlayerRepo) ListByTeamID(ctx context.Context, teamID int) ([]models.Player, error) {
	return nil, nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, player *models.Player) error {
	return nil
}

func (f *fakePlayerRepo) SetActive(ctx context.Context, id int, active bool) error {
	return nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if t, ok := f.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) List(ctx context.Context, filter repositories.ListTeamsFilter) ([]models.Team, error) {
	return nil, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error { return nil }

func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error { return nil }

func (f *fakeTeamRepo) UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error {
	return nil
}

type fakeActivityRepo struct {
	activities map[int]*models.Activity
	onDate     []models.Activity
}

func (f *fakeActivityRepo) Create(ctx context.Context, exec repositories.SQLExecutor, activity *models.Activity, teamIDs []int) error {
	return nil
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, id int) (*models.Activity, error) {
	if a, ok := f.activities[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrActivityNotFound
}

func (f *fakeActivityRepo) List(ctx context.Context, filter repositories.ListActivitiesFilter) ([]models.Activity, error) {
	return nil, nil
}

func (f *fakeActivityRepo) ListOnDate(ctx context.Context, exec repositories.SQLExecutor, date time.Time) ([]models.Activity, error) {
	return f.onDate, nil
}

func (f *fakeActivityRepo) ListUpcomingByTeam(ctx context.Context, teamID int, from time.Time) ([]models.Activity, error) {
	return nil, nil
}

func (f *fakeActivityRepo) Update(ctx context.Context, exec repositories.SQLExecutor, activity *models.Activity, teamIDs []int) error {
	return nil
}

func (f *fakeActivityRepo) SetCanceled(ctx context.Context, id int, reason string) error {
	return nil
}

func (f *fakeActivityRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeAttendanceRepo struct {
	created *models.Attendance
	nextID  int
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	if f.nextID == 0 {
		f.nextID = 1
	}
	attendance.ID = f.nextID
	cp := *attendance
	f.created = &cp
	return nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id int) (*models.Attendance, error) {
	if f.created != nil && f.created.ID == id {
		cp := *f.created
		return &cp, nil
	}
	return nil, repositories.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) ListByActivity(ctx context.Context, activityID int) ([]models.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) ListByPlayer(ctx context.Context, playerID int) ([]models.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error {
	return nil
}

func (f *fakeAttendanceRepo) Delete(ctx context.Context, id int) error { return nil }

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
