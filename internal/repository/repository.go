// Package repository owns the in-memory roster and commits every change
// through a storage.Store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
	"unit-roster/internal/storage"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("repository is closed")

type Option func(*Repository)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Repository holds the single AppState of the process. Operations are
// serialized; each mutation builds the next state, saves it, and only then
// makes it current, so a failed save leaves memory unchanged.
type Repository struct {
	mu     sync.Mutex
	store  storage.Store
	state  *models.AppState
	now    func() time.Time
	logger *logrus.Logger
	closed bool
}

// Open loads the snapshot from store. The repository owns store from here on.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  store,
		now:    time.Now,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	r.state = state

	r.logger.WithFields(logrus.Fields{
		"personnel": len(state.Personnel),
		"leaves":    len(state.Leaves),
	}).Info("Roster opened")
	return r, nil
}

func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.store.Close()
}

// RegisterPersonnel validates in, assigns the next "P<n>" identifier and persists the roster.
func (r *Repository) RegisterPersonnel(ctx context.Context, in models.PersonnelInput) (*models.Personnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	next := r.state.Clone()
	p, err := models.NewPersonnel(next.NextPersonnelID(), in)
	if err != nil {
		return nil, err
	}
	next.Personnel = append(next.Personnel, *p)
	next.Sequence.Personnel++

	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"personnel_id": p.ID,
		"matr":         p.Registration,
	}).Info("Personnel registered")
	return p, nil
}

// LogLeave records an absence for personnelID and deducts the matching balance.
// An unknown personnel id fails with *models.NotFoundError before the dates are checked.
func (r *Repository) LogLeave(
	ctx context.Context,
	personnelID string,
	leaveType models.LeaveType,
	start, end models.Date,
	description string,
) (*models.LeaveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	idx := r.indexOf(personnelID)
	if idx < 0 {
		return nil, &models.NotFoundError{Kind: "personnel", ID: personnelID}
	}

	next := r.state.Clone()
	rec, err := models.NewLeaveRecord(next.NextLeaveID(), personnelID, leaveType, start, end, description, r.now())
	if err != nil {
		return nil, err
	}
	next.Leaves = append(next.Leaves, *rec)
	next.Sequence.Leaves++
	deductBalance(&next.Personnel[idx], *rec)

	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"leave_id":     rec.ID,
		"personnel_id": personnelID,
		"type":         rec.Type,
		"days":         rec.Days(),
	}).Info("Leave logged")
	return rec, nil
}

// deductBalance applies the one-time balance rule of a newly logged leave.
func deductBalance(p *models.Personnel, rec models.LeaveRecord) {
	days := rec.Days()
	switch rec.Type {
	case models.LeaveVacation:
		p.VacationBalance = models.ClampBalance(p.VacationBalance - days)
	case models.LeaveAbstention:
		p.SpecialLeaveBalance = models.ClampBalance(p.SpecialLeaveBalance - days)
	}
}

func (r *Repository) commit(ctx context.Context, next *models.AppState) error {
	if err := r.store.Save(ctx, next); err != nil {
		r.logger.WithError(err).Error("Failed to persist roster, change discarded")
		return fmt.Errorf("persist state: %w", err)
	}
	r.state = next
	return nil
}

func (r *Repository) indexOf(personnelID string) int {
	for i := range r.state.Personnel {
		if r.state.Personnel[i].ID == personnelID {
			return i
		}
	}
	return -1
}

// FindPersonnelByID returns a copy of the entry, or nil.
func (r *Repository) FindPersonnelByID(id string) *models.Personnel {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	p := r.state.Personnel[idx]
	return &p
}

// LeavesForPersonnel returns the leaves of id in logging order.
func (r *Repository) LeavesForPersonnel(id string) []models.LeaveRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.LeaveRecord{}
	for _, l := range r.state.Leaves {
		if l.PersonnelID == id {
			out = append(out, l)
		}
	}
	return out
}

func (r *Repository) ListPersonnel() []models.Personnel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Personnel{}, r.state.Personnel...)
}

func (r *Repository) ListLeaves() []models.LeaveRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.LeaveRecord{}, r.state.Leaves...)
}

// SearchPersonnel matches query case-insensitively against name and registration
// number. An empty query returns everyone.
func (r *Repository) SearchPersonnel(query string) []models.Personnel {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.ListPersonnel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Personnel{}
	for _, p := range r.state.Personnel {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Registration), query) {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns a copy of the whole roster for read-only views.
func (r *Repository) Snapshot() *models.AppState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}
