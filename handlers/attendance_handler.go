package handlers

import (
	"net/http"

	"github.com/sur-voley/club-system/middleware"
	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/services"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	recorderID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.MarkAttendanceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendance, err := h.attendanceService.MarkAttendance(r.Context(), input, recorderID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"attendance": attendance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "attendanceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendance, err := h.attendanceService.GetAttendanceByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendance": attendance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) ListByActivity(w http.ResponseWriter, r *http.Request) {
	activityID, err := getIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendances, err := h.attendanceService.ListByActivity(r.Context(), activityID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendances": attendances}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) ListByPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendances, err := h.attendanceService.ListByPlayer(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendances": attendances}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "attendanceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.AttendanceStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendance, err := h.attendanceService.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendance": attendance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "attendanceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.attendanceService.DeleteAttendance(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
