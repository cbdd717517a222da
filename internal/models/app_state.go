// internal/models/app_state.go
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	PersonnelIDPrefix = "P"
	LeaveIDPrefix     = "L"
)

// Sequence holds the last number issued for each identifier prefix.
type Sequence struct {
	Personnel int `json:"personnel"`
	Leaves    int `json:"leaves"`
}

// AppState is the whole roster: personnel in registration order and leaves in logging order.
type AppState struct {
	Personnel []Personnel   `json:"personnel"`
	Leaves    []LeaveRecord `json:"leaves"`
	Sequence  Sequence      `json:"sequence"`
}

func NewAppState() *AppState {
	return &AppState{
		Personnel: []Personnel{},
		Leaves:    []LeaveRecord{},
	}
}

// Clone returns a copy that shares no slices with s.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Personnel: make([]Personnel, len(s.Personnel)),
		Leaves:    make([]LeaveRecord, len(s.Leaves)),
		Sequence:  s.Sequence,
	}
	copy(out.Personnel, s.Personnel)
	copy(out.Leaves, s.Leaves)
	return out
}

func (s *AppState) NextPersonnelID() string {
	return PersonnelIDPrefix + strconv.Itoa(s.Sequence.Personnel+1)
}

func (s *AppState) NextLeaveID() string {
	return LeaveIDPrefix + strconv.Itoa(s.Sequence.Leaves+1)
}

// ReconcileSequence raises the counters so that no identifier already in use
// can be issued again.
func (s *AppState) ReconcileSequence() {
	s.Sequence.Personnel = max(s.Sequence.Personnel, len(s.Personnel))
	for _, p := range s.Personnel {
		if n, ok := sequenceNumber(p.ID, PersonnelIDPrefix); ok {
			s.Sequence.Personnel = max(s.Sequence.Personnel, n)
		}
	}
	s.Sequence.Leaves = max(s.Sequence.Leaves, len(s.Leaves))
	for _, l := range s.Leaves {
		if n, ok := sequenceNumber(l.ID, LeaveIDPrefix); ok {
			s.Sequence.Leaves = max(s.Sequence.Leaves, n)
		}
	}
}

func sequenceNumber(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Validate checks every entity and identifier uniqueness.
func (s *AppState) Validate() error {
	var errs []error
	if s.Sequence.Personnel < 0 || s.Sequence.Leaves < 0 {
		errs = append(errs, errors.New("sequence counters must be >= 0"))
	}

	seen := make(map[string]bool, len(s.Personnel))
	for i := range s.Personnel {
		p := &s.Personnel[i]
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("personnel[%d]: %w", i, err))
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("personnel[%d]: duplicate id %q", i, p.ID))
		}
		seen[p.ID] = true
	}

	seen = make(map[string]bool, len(s.Leaves))
	for i := range s.Leaves {
		l := &s.Leaves[i]
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("leaves[%d]: %w", i, err))
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("leaves[%d]: duplicate id %q", i, l.ID))
		}
		seen[l.ID] = true
	}
	return errors.Join(errs...)
}

// UnknownEnumValues describes enum values in s that this build does not recognize.
func (s *AppState) UnknownEnumValues() []string {
	var out []string
	for _, p := range s.Personnel {
		if !p.Rank.IsKnown() {
			out = append(out, fmt.Sprintf("personnel %s: grad %q", p.ID, p.Rank))
		}
		if !p.Role.IsKnown() {
			out = append(out, fmt.Sprintf("personnel %s: role %q", p.ID, p.Role))
		}
	}
	for _, l := range s.Leaves {
		if !l.Type.IsKnown() {
			out = append(out, fmt.Sprintf("leave %s: type %q", l.ID, l.Type))
		}
	}
	return out
}

// DanglingLeaves returns the ids of leaves whose owner is not in s.
func (s *AppState) DanglingLeaves() []string {
	owners := make(map[string]bool, len(s.Personnel))
	for _, p := range s.Personnel {
		owners[p.ID] = true
	}
	var out []string
	for _, l := range s.Leaves {
		if !owners[l.PersonnelID] {
			out = append(out, l.ID)
		}
	}
	return out
}
