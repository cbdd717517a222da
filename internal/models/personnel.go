// internal/models/personnel.go
package models

import (
	"errors"
	"strings"
)

// Personnel is one service member or civilian employee of the unit.
type Personnel struct {
	ID                  string   `json:"id"`
	Seniority           int      `json:"ant"`
	Rank                Rank     `json:"grad"`
	Corps               string   `json:"quadro"`
	Name                string   `json:"nome"`
	Registration        string   `json:"matr"`
	Unit                string   `json:"unid"`
	Section             string   `json:"secao"`
	Status              string   `json:"situacao"`
	DutySchedule        string   `json:"esc"`
	VacationBalance     int      `json:"saldoFerias"`
	SpecialLeaveBalance int      `json:"saldoAbono"`
	Role                UserRole `json:"role"`
}

// PersonnelFields lists the document keys of a stored Personnel object.
var PersonnelFields = []string{
	"id", "ant", "grad", "quadro", "nome", "matr", "unid", "secao",
	"situacao", "esc", "saldoFerias", "saldoAbono", "role",
}

// PersonnelInput holds the registration fields. The identifier is assigned by the repository.
type PersonnelInput struct {
	Seniority           int      `json:"ant"`
	Rank                Rank     `json:"grad"`
	Corps               string   `json:"quadro"`
	Name                string   `json:"nome"`
	Registration        string   `json:"matr"`
	Unit                string   `json:"unid"`
	Section             string   `json:"secao"`
	Status              string   `json:"situacao"`
	DutySchedule        string   `json:"esc"`
	VacationBalance     int      `json:"saldoFerias"`
	SpecialLeaveBalance int      `json:"saldoAbono"`
	Role                UserRole `json:"role"`
}

// NewPersonnelInput returns the registration form defaults.
func NewPersonnelInput() PersonnelInput {
	return PersonnelInput{
		Seniority:           1,
		Rank:                RankSD,
		Corps:               "QOPM",
		Unit:                "DLF",
		Section:             "SAD",
		Status:              "ATIVO",
		DutySchedule:        "EXP",
		VacationBalance:     30,
		SpecialLeaveBalance: 5,
		Role:                RoleUser,
	}
}

// NewPersonnel validates in and builds the entity with the given identifier.
// Negative balances are clamped to zero.
func NewPersonnel(id string, in PersonnelInput) (*Personnel, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewValidationError(FieldName, "name is required")
	}
	if strings.TrimSpace(in.Registration) == "" {
		return nil, NewValidationError(FieldRegistration, "registration number is required")
	}
	if !in.Rank.IsKnown() {
		return nil, NewValidationError(FieldRank, "unknown rank %q", in.Rank)
	}
	if !in.Role.IsKnown() {
		return nil, NewValidationError(FieldRole, "unknown role %q", in.Role)
	}

	return &Personnel{
		ID:                  id,
		Seniority:           in.Seniority,
		Rank:                in.Rank,
		Corps:               in.Corps,
		Name:                in.Name,
		Registration:        in.Registration,
		Unit:                in.Unit,
		Section:             in.Section,
		Status:              in.Status,
		DutySchedule:        in.DutySchedule,
		VacationBalance:     ClampBalance(in.VacationBalance),
		SpecialLeaveBalance: ClampBalance(in.SpecialLeaveBalance),
		Role:                in.Role,
	}, nil
}

// Validate checks a stored entry. Unknown rank and role values are tolerated
// so documents written by newer versions still load.
func (p *Personnel) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, NewValidationError(FieldID, "id is required"))
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, NewValidationError(FieldName, "name is required"))
	}
	if strings.TrimSpace(p.Registration) == "" {
		errs = append(errs, NewValidationError(FieldRegistration, "registration number is required"))
	}
	if p.VacationBalance < 0 {
		errs = append(errs, NewValidationError(FieldVacation, "balance must be >= 0, got %d", p.VacationBalance))
	}
	if p.SpecialLeaveBalance < 0 {
		errs = append(errs, NewValidationError(FieldSpecialLeave, "balance must be >= 0, got %d", p.SpecialLeaveBalance))
	}
	return errors.Join(errs...)
}

// ClampBalance floors a day balance at zero.
func ClampBalance(days int) int {
	if days < 0 {
		return 0
	}
	return days
}
