package services

import (
	"errors"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dateOnly обрезает время до полуночи UTC — даты активностей сравниваются
// только по дню.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func populateProfilePhotoURL(profile *models.Profile, uploader storage.FileUploader) {
	if profile == nil {
		return
	}
	profile.PasswordHash = ""
	if profile.PhotoKey != nil && *profile.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*profile.PhotoKey)
		if url != "" {
			profile.PhotoURL = &url
		}
	}
}

func populateTeamCrestURL(team *models.Team, uploader storage.FileUploader) {
	if team == nil {
		return
	}
	if team.Coach != nil {
		team.Coach.PasswordHash = ""
	}
	if team.CrestKey != nil && *team.CrestKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.CrestKey)
		if url != "" {
			team.CrestURL = &url
		}
	}
}

// mapRepositoryError переводит ошибки слоя репозиториев в сервисные,
// чтобы обработчики знали только про пакет services.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrProfileNotFound):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrProfileRUNConflict):
		return ErrProfileRUNConflict
	case errors.Is(err, repositories.ErrProfileEmailConflict):
		return ErrProfileEmailConflict
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrCategorySlugConflict):
		return ErrCategorySlugConflict
	case errors.Is(err, repositories.ErrCategoryInUse):
		return ErrCategoryInUse
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamInvalidCategory):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrTeamInvalidCoach):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrTeamInUse):
		return ErrTeamInUse
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerProfileConflict):
		return ErrPlayerExists
	case errors.Is(err, repositories.ErrPlayerInvalidProfile):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidTeam):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrActivityNotFound):
		return ErrActivityNotFound
	case errors.Is(err, repositories.ErrActivityInvalidTeam):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrActivityInvalidCoach):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrActivityDateRange):
		return ErrActivityInvalidDateRange
	case errors.Is(err, repositories.ErrAttendanceNotFound):
		return ErrAttendanceNotFound
	case errors.Is(err, repositories.ErrAttendanceDuplicate):
		return ErrAttendanceDuplicate
	case errors.Is(err, repositories.ErrAttendanceInvalidPlayer):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrAttendanceInvalidActivity):
		return ErrActivityNotFound
	}
	return err
}
