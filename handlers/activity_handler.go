package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/services"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// activityRequest — транспортная форма активности: даты и времена приходят
// строками и разбираются до передачи в сервис.
type activityRequest struct {
	Title       string  `json:"title"`
	Kind        string  `json:"kind"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date,omitempty"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	Description *string `json:"description,omitempty"`
	CoachID     *int    `json:"coach_id,omitempty"`
	TeamIDs     []int   `json:"team_ids"`
}

func (req *activityRequest) toInput() (services.ActivityInput, error) {
	input := services.ActivityInput{
		Title:       req.Title,
		Kind:        models.ActivityKind(req.Kind),
		Description: req.Description,
		CoachID:     req.CoachID,
		TeamIDs:     req.TeamIDs,
	}

	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return input, fmt.Errorf("invalid start_date: expected YYYY-MM-DD")
		}
		input.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return input, fmt.Errorf("invalid end_date: expected YYYY-MM-DD")
		}
		input.EndDate = endDate
	}
	if req.StartTime != "" {
		startTime, err := time.Parse("15:04", req.StartTime)
		if err != nil {
			return input, fmt.Errorf("invalid start_time: expected HH:MM")
		}
		input.StartTime = &startTime
	}
	if req.EndTime != "" {
		endTime, err := time.Parse("15:04", req.EndTime)
		if err != nil {
			return input, fmt.Errorf("invalid end_time: expected HH:MM")
		}
		input.EndTime = &endTime
	}
	return input, nil
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.CreateActivity(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.GetActivityByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListActivitiesFilter

	from, err := parseDateParam(r, "from")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.From = from

	to, err := parseDateParam(r, "to")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.To = to

	if v := r.URL.Query().Get("team_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errInvalidQueryParam("team_id"))
			return
		}
		filter.TeamID = &id
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := models.ActivityKind(v)
		if !kind.Valid() {
			badRequestResponse(w, r, errInvalidQueryParam("kind"))
			return
		}
		filter.Kind = &kind
	}
	if v := r.URL.Query().Get("include_canceled"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			badRequestResponse(w, r, errInvalidQueryParam("include_canceled"))
			return
		}
		filter.IncludeCanceled = include
	}
	filter.Limit, filter.Offset = parsePagination(r)

	activities, err := h.activityService.ListActivities(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"activities": activities}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req activityRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.UpdateActivity(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.CancelActivity(r.Context(), id, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.activityService.DeleteActivity(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpcomingByTeam — ближайшие активности команды.
func (h *ActivityHandler) UpcomingByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activities, err := h.activityService.ListUpcomingByTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"activities": activities}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AvailableCoaches описывает окно черновика активности query-параметрами
// (date, start_time, end_time, kind, team_ids, activity_id) и возвращает
// свободных тренеров.
func (h *ActivityHandler) AvailableCoaches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var input services.ActivityInput
	startDate, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid date parameter: expected YYYY-MM-DD"))
		return
	}
	input.StartDate = startDate

	if v := q.Get("kind"); v != "" {
		input.Kind = models.ActivityKind(v)
	}
	if v := q.Get("start_time"); v != "" {
		startTime, err := time.Parse("15:04", v)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid start_time parameter: expected HH:MM"))
			return
		}
		input.StartTime = &startTime
	}
	if v := q.Get("end_time"); v != "" {
		endTime, err := time.Parse("15:04", v)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid end_time parameter: expected HH:MM"))
			return
		}
		input.EndTime = &endTime
	}
	// При редактировании activity_id исключает саму активность, иначе её
	// текущий тренер числился бы занятым собственной записью.
	if v := q.Get("activity_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errInvalidQueryParam("activity_id"))
			return
		}
		input.ActivityID = &id
	}
	if v := q.Get("team_ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || id <= 0 {
				badRequestResponse(w, r, errInvalidQueryParam("team_ids"))
				return
			}
			input.TeamIDs = append(input.TeamIDs, id)
		}
	}

	coaches, err := h.activityService.AvailableCoaches(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
