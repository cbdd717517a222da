// internal/models/leave_record.go
package models

import (
	"errors"
	"strings"
	"time"
)

// LeaveRecord is one absence of one Personnel entry over an inclusive date range.
type LeaveRecord struct {
	ID          string    `json:"id"`
	PersonnelID string    `json:"personnel_id"`
	Type        LeaveType `json:"type"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// LeaveRecordFields lists the document keys of a stored LeaveRecord object.
var LeaveRecordFields = []string{
	"id", "personnel_id", "type", "startDate", "endDate", "description", "createdAt",
}

func NewLeaveRecord(
	id, personnelID string,
	leaveType LeaveType,
	start, end Date,
	description string,
	createdAt time.Time,
) (*LeaveRecord, error) {
	if !leaveType.IsKnown() {
		return nil, NewValidationError(FieldLeaveType, "unknown leave type %q", leaveType)
	}
	if err := ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	return &LeaveRecord{
		ID:          id,
		PersonnelID: personnelID,
		Type:        leaveType,
		StartDate:   start,
		EndDate:     end,
		Description: description,
		CreatedAt:   NewTimestamp(createdAt),
	}, nil
}

// ValidateDateRange rejects missing dates, dates before MinYear and an end
// date before the start date.
func ValidateDateRange(start, end Date) error {
	if err := checkDate(FieldStartDate, "start", start); err != nil {
		return err
	}
	if err := checkDate(FieldEndDate, "end", end); err != nil {
		return err
	}
	if end.Before(start.Time) {
		return NewValidationError(FieldEndDate, "end date %s is before start date %s", end, start)
	}
	return nil
}

func checkDate(field, name string, d Date) error {
	if d.IsZero() {
		return NewValidationError(field, "%s date is required", name)
	}
	if d.Year() < MinYear {
		return NewValidationError(field, "%s date %s is before %d", name, d, MinYear)
	}
	return nil
}

// Days is the inclusive length of the leave.
func (l LeaveRecord) Days() int {
	return DaysBetween(l.StartDate, l.EndDate)
}

// Covers reports whether day falls inside the leave, both ends included.
func (l LeaveRecord) Covers(day Date) bool {
	return !day.Before(l.StartDate.Time) && !day.After(l.EndDate.Time)
}

func (l *LeaveRecord) Validate() error {
	var errs []error
	if strings.TrimSpace(l.ID) == "" {
		errs = append(errs, NewValidationError(FieldID, "id is required"))
	}
	if strings.TrimSpace(l.PersonnelID) == "" {
		errs = append(errs, NewValidationError(FieldPersonnelID, "personnel id is required"))
	}
	if err := ValidateDateRange(l.StartDate, l.EndDate); err != nil {
		errs = append(errs, err)
	}
	if l.CreatedAt.IsZero() {
		errs = append(errs, NewValidationError(FieldCreatedAt, "creation time is required"))
	}
	return errors.Join(errs...)
}
