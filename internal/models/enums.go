// internal/models/enums.go
package models

import "strings"

// Rank is the military grade (or civilian category) of a Personnel entry.
type Rank string

const (
	RankCEL   Rank = "CEL"
	RankTC    Rank = "TC"
	RankMAJ   Rank = "MAJ"
	RankCAP   Rank = "CAP"
	Rank1TEN  Rank = "1º TEN"
	Rank2TEN  Rank = "2º TEN"
	RankST    Rank = "ST"
	Rank1SGT  Rank = "1º SGT"
	Rank2SGT  Rank = "2º SGT"
	Rank3SGT  Rank = "3º SGT"
	RankCB    Rank = "CB"
	RankSD    Rank = "SD"
	RankCivil Rank = "F.CIVIL"
)

var ranks = []Rank{
	RankCEL, RankTC, RankMAJ, RankCAP, Rank1TEN, Rank2TEN, RankST,
	Rank1SGT, Rank2SGT, Rank3SGT, RankCB, RankSD, RankCivil,
}

// AllRanks returns the ranks in hierarchy order.
func AllRanks() []Rank {
	return append([]Rank(nil), ranks...)
}

// IsKnown reports whether r is one of the declared ranks.
func (r Rank) IsKnown() bool {
	for _, known := range ranks {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRank matches s case-insensitively against the known ranks.
func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(s)
	for _, known := range ranks {
		if strings.EqualFold(string(known), s) {
			return known, nil
		}
	}
	return "", NewValidationError(FieldRank, "unknown rank %q", s)
}

// UserRole is stored with each Personnel entry. Nothing checks it.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
	RoleUser    UserRole = "USER"
)

var roles = []UserRole{RoleAdmin, RoleManager, RoleUser}

// AllUserRoles returns the roles from most to least privileged.
func AllUserRoles() []UserRole {
	return append([]UserRole(nil), roles...)
}

// IsKnown reports whether r is one of the declared roles.
func (r UserRole) IsKnown() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseUserRole matches s case-insensitively against the known roles.
func ParseUserRole(s string) (UserRole, error) {
	s = strings.TrimSpace(s)
	for _, known := range roles {
		if strings.EqualFold(string(known), s) {
			return known, nil
		}
	}
	return "", NewValidationError(FieldRole, "unknown role %q", s)
}

// LeaveType is the category of an absence.
type LeaveType string

const (
	LeaveVacation        LeaveType = "FÉRIAS"
	LeaveAbstention      LeaveType = "ABONO"
	LeaveSickLeave       LeaveType = "LTSP"
	LeaveRestriction     LeaveType = "RESTRIÇÃO"
	LeaveSpecial         LeaveType = "LICENÇA ESPECIAL"
	LeavePrivateInterest LeaveType = "LTIP"
	LeaveReadyForDuty    LeaveType = "PRONTO EMPREGO"
	LeaveExtra           LeaveType = "EXTRA"
	LeaveRepresentation  LeaveType = "REPRESENTAÇÃO"
	LeaveRewardDispensa  LeaveType = "DISPENSA RECOMPENSA"
)

type leaveTypeInfo struct {
	value LeaveType
	key   string
	label string
}

var leaveTypes = []leaveTypeInfo{
	{LeaveVacation, "ferias", "Férias"},
	{LeaveAbstention, "abono", "Abono"},
	{LeaveSickLeave, "ltsp", "Licença para Tratamento de Saúde Própria"},
	{LeaveRestriction, "restricao", "Restrição"},
	{LeaveSpecial, "licenca_especial", "Licença Especial"},
	{LeavePrivateInterest, "ltip", "Licença para Tratar de Interesse Particular"},
	{LeaveReadyForDuty, "pronto_emprego", "Pronto Emprego"},
	{LeaveExtra, "extra", "Extra"},
	{LeaveRepresentation, "representacao", "Representação"},
	{LeaveRewardDispensa, "dispensa_recompensa", "Dispensa Recompensa"},
}

// AllLeaveTypes returns the leave types in declaration order.
func AllLeaveTypes() []LeaveType {
	out := make([]LeaveType, 0, len(leaveTypes))
	for _, info := range leaveTypes {
		out = append(out, info.value)
	}
	return out
}

func (t LeaveType) info() (leaveTypeInfo, bool) {
	for _, info := range leaveTypes {
		if info.value == t {
			return info, true
		}
	}
	return leaveTypeInfo{}, false
}

// IsKnown reports whether t is one of the declared leave types.
func (t LeaveType) IsKnown() bool {
	_, ok := t.info()
	return ok
}

// Key is the ASCII short name used by text front-ends, e.g. "ferias".
func (t LeaveType) Key() string {
	if info, ok := t.info(); ok {
		return info.key
	}
	return string(t)
}

// Label is the Portuguese display name, or the raw value for unknown types.
func (t LeaveType) Label() string {
	if info, ok := t.info(); ok {
		return info.label
	}
	return string(t)
}

// Order is the declaration index of t, or len(AllLeaveTypes()) for unknown values.
func (t LeaveType) Order() int {
	for i, info := range leaveTypes {
		if info.value == t {
			return i
		}
	}
	return len(leaveTypes)
}

// ParseLeaveType accepts either the stored value ("FÉRIAS") or the short key ("ferias").
func ParseLeaveType(s string) (LeaveType, error) {
	s = strings.TrimSpace(s)
	for _, info := range leaveTypes {
		if strings.EqualFold(string(info.value), s) || strings.EqualFold(info.key, s) {
			return info.value, nil
		}
	}
	return "", NewValidationError(FieldLeaveType, "unknown leave type %q", s)
}
