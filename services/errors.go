package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sur-voley/club-system/scheduling"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("this account has been disabled")
	ErrPlayerDisabled       = errors.New("the linked player profile is disabled")
	ErrInvalidRole          = errors.New("invalid role provided")
	ErrInvalidRUN           = errors.New("invalid RUN format")
	ErrInvalidPhone         = errors.New("invalid phone format")
	ErrInvalidBloodType     = errors.New("invalid blood type provided")
	ErrSelfDisableForbidden = errors.New("cannot disable your own account")

	// Ошибки конфликтов (уникальные ограничения БД)
	ErrProfileRUNConflict   = errors.New("run is already registered")
	ErrProfileEmailConflict = errors.New("email address is already in use")
	ErrCategorySlugConflict = errors.New("category slug is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use within the category")
	ErrPlayerExists         = errors.New("profile already has a player record")
	ErrAttendanceDuplicate  = errors.New("attendance already recorded for this player and activity")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrCoachRoleRequired    = errors.New("only a coach can perform this action")

	// Ошибки, специфичные для сущностей
	ErrProfileNotFound    = errors.New("profile not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrCategoryInUse      = errors.New("category is still referenced by teams")
	ErrTeamInUse          = errors.New("team is still referenced by players or activities")

	// Ошибки активностей
	ErrActivityTitleRequired    = errors.New("activity title is required")
	ErrActivityKindInvalid      = errors.New("invalid activity kind")
	ErrActivityTeamsRequired    = errors.New("activity requires at least one participating team")
	ErrActivityInvalidDateRange = errors.New("activity end date must not precede start date")
	ErrActivityTimesIncomplete  = errors.New("start and end time must be provided together")
	ErrActivityInvalidTimeRange = errors.New("activity end time must be after start time")
	ErrActivityCanceled         = errors.New("activity is canceled")
	ErrCancelReasonRequired     = errors.New("cancellation reason is required")
)

// ValidationError переносит ошибки уровня полей до обработчика, который
// отдаёт их клиенту как структурированный ответ 422. Никогда не фатальна.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, reason))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// ScheduleConflictError blocks an activity save and carries the full
// conflict list so the client can show every clash, not just the first.
type ScheduleConflictError struct {
	Conflicts []scheduling.Conflict
}

func (e *ScheduleConflictError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		if c.Activity != nil {
			names = append(names, fmt.Sprintf("%q (%s)", c.Activity.Title, c.Kind))
		}
	}
	return "schedule conflict with " + strings.Join(names, ", ")
}
