package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
)

// UnknownPersonnelName stands in for the owner of a leave whose personnel entry is missing.
const UnknownPersonnelName = "(desconhecido)"

// Roster is the read side of the repository used for reporting.
type Roster interface {
	Snapshot() *models.AppState
}

// RecentLeave is a leave record joined with its owner for display.
type RecentLeave struct {
	models.LeaveRecord
	PersonnelName string      `json:"personnelName"`
	PersonnelRank models.Rank `json:"personnelRank"`
}

type Dashboard struct {
	TotalPersonnel int           `json:"totalPersonnel"`
	OnLeaveToday   int           `json:"onLeaveToday"`
	RecentLeaves   []RecentLeave `json:"recentLeaves"`
}

type TypeCount struct {
	Type  models.LeaveType `json:"type"`
	Label string           `json:"label"`
	Count int              `json:"count"`
}

type ReportOption func(*ReportService)

// WithReportClock sets the clock that defines "today".
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

func WithReportLogger(logger *logrus.Logger) ReportOption {
	return func(s *ReportService) {
		s.logger = logger
	}
}

// ReportService computes read-only aggregates over the roster. Every call works
// on one snapshot, so the values of a single report are mutually consistent.
type ReportService struct {
	roster Roster
	now    func() time.Time
	logger *logrus.Logger
}

func NewReportService(roster Roster, opts ...ReportOption) *ReportService {
	s := &ReportService{
		roster: roster,
		now:    time.Now,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) TotalPersonnelCount() int {
	return len(s.roster.Snapshot().Personnel)
}

// PersonnelOnLeaveToday counts distinct personnel with a vacation covering today's local date.
// Other leave types are not counted.
func (s *ReportService) PersonnelOnLeaveToday() int {
	return onLeave(s.roster.Snapshot(), models.DateOf(s.now()))
}

func onLeave(state *models.AppState, today models.Date) int {
	seen := make(map[string]struct{})
	for _, l := range state.Leaves {
		if l.Type == models.LeaveVacation && l.Covers(today) {
			seen[l.PersonnelID] = struct{}{}
		}
	}
	return len(seen)
}

// RecentLeaves returns the latest logged leaves, newest first. A limit of zero
// or less returns all of them.
func (s *ReportService) RecentLeaves(limit int) []RecentLeave {
	return recentLeaves(s.roster.Snapshot(), limit)
}

func recentLeaves(state *models.AppState, limit int) []RecentLeave {
	leaves := slices.Clone(state.Leaves)
	slices.SortStableFunc(leaves, func(a, b models.LeaveRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	if limit > 0 && len(leaves) > limit {
		leaves = leaves[:limit]
	}

	owners := make(map[string]models.Personnel, len(state.Personnel))
	for _, p := range state.Personnel {
		owners[p.ID] = p
	}

	out := make([]RecentLeave, 0, len(leaves))
	for _, l := range leaves {
		item := RecentLeave{LeaveRecord: l, PersonnelName: UnknownPersonnelName}
		if p, ok := owners[l.PersonnelID]; ok {
			item.PersonnelName = p.Name
			item.PersonnelRank = p.Rank
		}
		out = append(out, item)
	}
	return out
}

// LeaveCountsByType counts every leave record by its type. Only types present appear.
func (s *ReportService) LeaveCountsByType() map[models.LeaveType]int {
	counts := make(map[models.LeaveType]int)
	for _, l := range s.roster.Snapshot().Leaves {
		counts[l.Type]++
	}
	return counts
}

// LeaveTypeCounts lists every known type in declaration order, zero counts
// included, followed by any unknown types found in the roster.
func (s *ReportService) LeaveTypeCounts() []TypeCount {
	counts := s.LeaveCountsByType()
	for _, t := range models.AllLeaveTypes() {
		if _, ok := counts[t]; !ok {
			counts[t] = 0
		}
	}

	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Label: t.Label(), Count: n})
	}
	slices.SortFunc(out, func(a, b TypeCount) int {
		return cmp.Or(
			cmp.Compare(a.Type.Order(), b.Type.Order()),
			strings.Compare(string(a.Type), string(b.Type)),
		)
	})
	return out
}

// PersonnelLeaveHistory returns the leaves of one person, latest start date first.
func (s *ReportService) PersonnelLeaveHistory(id string) ([]models.LeaveRecord, error) {
	state := s.roster.Snapshot()
	if !slices.ContainsFunc(state.Personnel, func(p models.Personnel) bool { return p.ID == id }) {
		return nil, &models.NotFoundError{Kind: "personnel", ID: id}
	}

	out := []models.LeaveRecord{}
	for _, l := range state.Leaves {
		if l.PersonnelID == id {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b models.LeaveRecord) int {
		return b.StartDate.Compare(a.StartDate.Time)
	})
	return out, nil
}

// Dashboard bundles the headline numbers shown on the home screen.
func (s *ReportService) Dashboard(limit int) Dashboard {
	state := s.roster.Snapshot()
	d := Dashboard{
		TotalPersonnel: len(state.Personnel),
		OnLeaveToday:   onLeave(state, models.DateOf(s.now())),
		RecentLeaves:   recentLeaves(state, limit),
	}

	s.logger.WithFields(logrus.Fields{
		"total":    d.TotalPersonnel,
		"on_leave": d.OnLeaveToday,
		"recent":   len(d.RecentLeaves),
	}).Debug("Dashboard computed")
	return d
}
