package api

import "unit-roster/internal/models"

// CreateLeaveRequest is the body of POST /api/leaves. Dates are YYYY-MM-DD.
type CreateLeaveRequest struct {
	PersonnelID string `json:"personnel_id"`
	Type        string `json:"type"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

type LeaveTypeDTO struct {
	Value models.LeaveType `json:"value"`
	Key   string           `json:"key"`
	Label string           `json:"label"`
}

// EnumsDTO feeds the select inputs of the registration and leave forms.
type EnumsDTO struct {
	Ranks      []models.Rank         `json:"ranks"`
	Roles      []models.UserRole     `json:"roles"`
	LeaveTypes []LeaveTypeDTO        `json:"leaveTypes"`
	Defaults   models.PersonnelInput `json:"defaults"`
}
