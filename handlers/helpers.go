package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sur-voley/club-system/scheduling"
	"github.com/sur-voley/club-system/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, fields)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// scheduleConflictResponse отдаёт 409 со списком всех конфликтов, чтобы
// клиент показал их разом.
func scheduleConflictResponse(w http.ResponseWriter, r *http.Request, conflicts []scheduling.Conflict) {
	type conflictItem struct {
		ActivityID int                     `json:"activity_id"`
		Title      string                  `json:"title"`
		Kind       scheduling.ConflictKind `json:"kind"`
		TeamIDs    []int                   `json:"team_ids,omitempty"`
	}
	items := make([]conflictItem, 0, len(conflicts))
	for _, c := range conflicts {
		item := conflictItem{Kind: c.Kind}
		for _, team := range c.Teams {
			item.TeamIDs = append(item.TeamIDs, team.ID)
		}
		if c.Activity != nil {
			item.ActivityID = c.Activity.ID
			item.Title = c.Activity.Title
		}
		items = append(items, item)
	}
	env := jsonResponse{
		"error":     "the requested schedule slot conflicts with existing activities",
		"conflicts": items,
	}
	if err := writeJSON(w, http.StatusConflict, env, nil); err != nil {
		slog.Error("failed to write conflict response", slog.Any("error", err))
	}
}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("invalid %s query parameter", name)
}

// parsePagination достаёт limit/offset из query. Значения вне диапазона
// молча приводятся к дефолтным.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

// parseDateParam разбирает дату формата 2006-01-02 из query-параметра.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ScheduleConflictError

	switch {
	case errors.As(err, &validationErr):
		failedValidationResponse(w, r, validationErr.Fields)

	case errors.As(err, &conflictErr):
		scheduleConflictResponse(w, r, conflictErr.Conflicts)

	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrAttendanceNotFound):
		notFoundResponse(w, r)

	// Конфликты уникальности и ссылочной целостности
	case errors.Is(err, services.ErrProfileRUNConflict),
		errors.Is(err, services.ErrProfileEmailConflict),
		errors.Is(err, services.ErrCategorySlugConflict),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrPlayerExists),
		errors.Is(err, services.ErrAttendanceDuplicate),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrTeamInUse):
		conflictResponse(w, r, err.Error())

	// Невалидные данные / бизнес-правила
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidRUN),
		errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrInvalidBloodType),
		errors.Is(err, services.ErrActivityTitleRequired),
		errors.Is(err, services.ErrActivityKindInvalid),
		errors.Is(err, services.ErrActivityTeamsRequired),
		errors.Is(err, services.ErrActivityInvalidDateRange),
		errors.Is(err, services.ErrActivityTimesIncomplete),
		errors.Is(err, services.ErrActivityInvalidTimeRange),
		errors.Is(err, services.ErrActivityCanceled),
		errors.Is(err, services.ErrCancelReasonRequired):
		badRequestResponse(w, r, err)

	// Аутентификация и доступ
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrAccountDisabled),
		errors.Is(err, services.ErrPlayerDisabled),
		errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrCoachRoleRequired),
		errors.Is(err, services.ErrSelfDisableForbidden):
		forbiddenResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
