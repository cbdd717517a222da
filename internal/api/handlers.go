package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
	"unit-roster/internal/service"
)

// Roster is the part of the repository the HTTP layer calls.
type Roster interface {
	RegisterPersonnel(ctx context.Context, in models.PersonnelInput) (*models.Personnel, error)
	LogLeave(ctx context.Context, personnelID string, leaveType models.LeaveType, start, end models.Date, description string) (*models.LeaveRecord, error)
	FindPersonnelByID(id string) *models.Personnel
	SearchPersonnel(query string) []models.Personnel
}

type Handler struct {
	roster      Roster
	reports     *service.ReportService
	logger      *logrus.Logger
	recentLimit int
}

func NewHandler(roster Roster, reports *service.ReportService, logger *logrus.Logger, recentLimit int) *Handler {
	return &Handler{
		roster:      roster,
		reports:     reports,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

// ListPersonnel handles GET /api/personnel?q=
func (h *Handler) ListPersonnel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roster.SearchPersonnel(r.URL.Query().Get("q")))
}

// RegisterPersonnel handles POST /api/personnel. Omitted fields keep the form defaults.
func (h *Handler) RegisterPersonnel(w http.ResponseWriter, r *http.Request) {
	in := models.NewPersonnelInput()
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rank, err := models.ParseRank(string(in.Rank))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	role, err := models.ParseUserRole(string(in.Role))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	in.Rank, in.Role = rank, role

	p, err := h.roster.RegisterPersonnel(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPersonnel handles GET /api/personnel/{id}.
func (h *Handler) GetPersonnel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p := h.roster.FindPersonnelByID(id)
	if p == nil {
		h.writeDomainError(w, &models.NotFoundError{Kind: "personnel", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetLeaveHistory handles GET /api/personnel/{id}/leaves.
func (h *Handler) GetLeaveHistory(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.reports.PersonnelLeaveHistory(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

// LogLeave handles POST /api/leaves.
func (h *Handler) LogLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	leaveType, start, end, err := parseLeaveRequest(req)
	if err != nil {
		// An unknown owner is reported before malformed fields.
		if h.roster.FindPersonnelByID(req.PersonnelID) == nil {
			err = &models.NotFoundError{Kind: "personnel", ID: req.PersonnelID}
		}
		h.writeDomainError(w, err)
		return
	}

	rec, err := h.roster.LogLeave(r.Context(), req.PersonnelID, leaveType, start, end, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func parseLeaveRequest(req CreateLeaveRequest) (models.LeaveType, models.Date, models.Date, error) {
	leaveType, err := models.ParseLeaveType(req.Type)
	if err != nil {
		return "", models.Date{}, models.Date{}, err
	}
	start, err := parseOptionalDate(models.FieldStartDate, req.StartDate)
	if err != nil {
		return "", models.Date{}, models.Date{}, err
	}
	end, err := parseOptionalDate(models.FieldEndDate, req.EndDate)
	if err != nil {
		return "", models.Date{}, models.Date{}, err
	}
	return leaveType, start, end, nil
}

// parseOptionalDate leaves an empty value as the zero Date so the repository
// reports the missing field itself.
func parseOptionalDate(field, value string) (models.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, models.NewValidationError(field, "%s", err.Error())
	}
	return d, nil
}

// GetDashboard handles GET /api/reports/dashboard?limit=
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	limit := h.recentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.reports.Dashboard(limit))
}

// GetLeaveTypeCounts handles GET /api/reports/leave-types.
func (h *Handler) GetLeaveTypeCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.LeaveTypeCounts())
}

// GetEnums handles GET /api/enums.
func (h *Handler) GetEnums(w http.ResponseWriter, r *http.Request) {
	dto := EnumsDTO{
		Ranks:    models.AllRanks(),
		Roles:    models.AllUserRoles(),
		Defaults: models.NewPersonnelInput(),
	}
	for _, t := range models.AllLeaveTypes() {
		dto.LeaveTypes = append(dto.LeaveTypes, LeaveTypeDTO{Value: t, Key: t.Key(), Label: t.Label()})
	}
	writeJSON(w, http.StatusOK, dto)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("request body has trailing data")
	}
	return nil
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var nferr *models.NotFoundError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.As(err, &nferr):
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", nferr.Kind), nferr)
	default:
		h.logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
