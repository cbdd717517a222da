package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-roster/internal/models"
	"unit-roster/internal/storage"
)

var fixedNow = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

type memoryStore struct {
	state   *models.AppState
	saves   int
	failErr error
	closed  bool
}

func (m *memoryStore) Load(context.Context) (*models.AppState, error) {
	if m.state == nil {
		return models.NewAppState(), nil
	}
	return m.state.Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, state *models.AppState) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.state = state.Clone()
	return nil
}

func (m *memoryStore) Close() error {
	m.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTest(t *testing.T, store storage.Store) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), store,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	return repo
}

func mariaInput() models.PersonnelInput {
	in := models.NewPersonnelInput()
	in.Name = "Maria Silva"
	in.Registration = "12345"
	in.Rank = models.RankCAP
	return in
}

func TestRegisterPersonnel_AssignsSequentialIDs(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)
	ctx := context.Background()

	p1, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)
	assert.Equal(t, "P1", p1.ID)
	assert.Equal(t, 30, p1.VacationBalance)
	assert.Equal(t, 5, p1.SpecialLeaveBalance)
	assert.Equal(t, models.RoleUser, p1.Role)

	in := models.NewPersonnelInput()
	in.Name = "João Souza"
	in.Registration = "54321"
	p2, err := repo.RegisterPersonnel(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "P2", p2.ID)

	assert.Equal(t, 2, store.saves)
	assert.Len(t, store.state.Personnel, 2)
	assert.Equal(t, models.Sequence{Personnel: 2}, store.state.Sequence)
}

func TestRegisterPersonnel_Validation(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)

	in := mariaInput()
	in.Name = "   "
	_, err := repo.RegisterPersonnel(context.Background(), in)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.FieldName, verr.Field)

	assert.Empty(t, repo.ListPersonnel())
	assert.Zero(t, store.saves)
}

func TestLogLeave_DeductsVacation(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	rec, err := repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 10), "Férias regulamentares")
	require.NoError(t, err)
	assert.Equal(t, "L1", rec.ID)
	assert.Equal(t, 10, rec.Days())
	assert.Equal(t, models.NewTimestamp(fixedNow), rec.CreatedAt)
	assert.Equal(t, 20, repo.FindPersonnelByID(p.ID).VacationBalance)

	_, err = repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(2024, time.February, 1), models.NewDate(2024, time.February, 25), "")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.FindPersonnelByID(p.ID).VacationBalance)
	assert.Equal(t, 5, repo.FindPersonnelByID(p.ID).SpecialLeaveBalance)
}

func TestLogLeave_LongRangeDeduction(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	in := mariaInput()
	in.VacationBalance = 200000
	p, err := repo.RegisterPersonnel(ctx, in)
	require.NoError(t, err)

	rec, err := repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(1900, time.January, 1), models.NewDate(1999, time.December, 31), "")
	require.NoError(t, err)
	assert.Equal(t, 36524, rec.Days())
	assert.Equal(t, 200000-36524, repo.FindPersonnelByID(p.ID).VacationBalance)

	// Five centuries exceed what time.Duration can express.
	rec, err = repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(2000, time.January, 1), models.NewDate(2499, time.December, 31), "")
	require.NoError(t, err)
	assert.Equal(t, 182622, rec.Days())
	assert.Equal(t, 0, repo.FindPersonnelByID(p.ID).VacationBalance)
}

func TestLogLeave_DeductsSpecialLeave(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	_, err = repo.LogLeave(ctx, p.ID, models.LeaveAbstention,
		models.NewDate(2024, time.May, 2), models.NewDate(2024, time.May, 3), "")
	require.NoError(t, err)

	got := repo.FindPersonnelByID(p.ID)
	assert.Equal(t, 3, got.SpecialLeaveBalance)
	assert.Equal(t, 30, got.VacationBalance)
}

func TestLogLeave_OtherTypesKeepBalances(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	for _, lt := range []models.LeaveType{models.LeaveSickLeave, models.LeaveRestriction, models.LeaveSpecial} {
		_, err = repo.LogLeave(ctx, p.ID, lt,
			models.NewDate(2024, time.June, 1), models.NewDate(2024, time.June, 30), "")
		require.NoError(t, err)
	}

	got := repo.FindPersonnelByID(p.ID)
	assert.Equal(t, 30, got.VacationBalance)
	assert.Equal(t, 5, got.SpecialLeaveBalance)
	assert.Len(t, repo.LeavesForPersonnel(p.ID), 3)
}

func TestLogLeave_UnknownPersonnel(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)

	// Reversed dates too: the missing owner is reported first.
	_, err := repo.LogLeave(context.Background(), "P99", models.LeaveVacation,
		models.NewDate(2024, time.January, 10), models.NewDate(2024, time.January, 1), "")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Empty(t, repo.ListLeaves())
	assert.Zero(t, store.saves)
}

func TestLogLeave_InvalidDates(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end models.Date
		field      string
	}{
		{"end before start", models.NewDate(2024, time.January, 10), models.NewDate(2024, time.January, 1), models.FieldEndDate},
		{"missing start", models.Date{}, models.NewDate(2024, time.January, 1), models.FieldStartDate},
		{"missing end", models.NewDate(2024, time.January, 1), models.Date{}, models.FieldEndDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.LogLeave(ctx, p.ID, models.LeaveVacation, tt.start, tt.end, "")
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.Empty(t, repo.ListLeaves())
	assert.Equal(t, 30, repo.FindPersonnelByID(p.ID).VacationBalance)
	assert.Equal(t, 1, store.saves)
}

func TestLogLeave_SingleDay(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	day := models.NewDate(2024, time.April, 15)
	_, err = repo.LogLeave(ctx, p.ID, models.LeaveVacation, day, day, "")
	require.NoError(t, err)
	assert.Equal(t, 29, repo.FindPersonnelByID(p.ID).VacationBalance)
}

func TestSaveFailureRollsBack(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)

	diskFull := errors.New("no space left on device")
	store.failErr = diskFull

	_, err = repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 10), "")
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "persist state")

	in := models.NewPersonnelInput()
	in.Name = "João Souza"
	in.Registration = "54321"
	_, err = repo.RegisterPersonnel(ctx, in)
	require.ErrorIs(t, err, diskFull)

	assert.Len(t, repo.ListPersonnel(), 1)
	assert.Empty(t, repo.ListLeaves())
	assert.Equal(t, 30, repo.FindPersonnelByID(p.ID).VacationBalance)
	assert.Equal(t, models.Sequence{Personnel: 1}, repo.Snapshot().Sequence)

	// Identifiers are not burnt by the failed attempts.
	store.failErr = nil
	p2, err := repo.RegisterPersonnel(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "P2", p2.ID)
}

func TestReadsReturnCopies(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)
	_, err = repo.LogLeave(ctx, p.ID, models.LeaveSickLeave,
		models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 2), "")
	require.NoError(t, err)

	p.Name = "changed"
	repo.FindPersonnelByID(p.ID).Name = "changed"
	repo.ListPersonnel()[0].Name = "changed"
	repo.ListLeaves()[0].Description = "changed"
	repo.Snapshot().Personnel[0].Name = "changed"

	assert.Equal(t, "Maria Silva", repo.FindPersonnelByID(p.ID).Name)
	assert.Empty(t, repo.ListLeaves()[0].Description)
}

func TestFindPersonnelByID_Missing(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	assert.Nil(t, repo.FindPersonnelByID("P1"))
	assert.NotNil(t, repo.LeavesForPersonnel("P1"))
	assert.Empty(t, repo.LeavesForPersonnel("P1"))
}

func TestSearchPersonnel(t *testing.T) {
	repo := openTest(t, &memoryStore{})
	ctx := context.Background()

	_, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)
	in := models.NewPersonnelInput()
	in.Name = "João Souza"
	in.Registration = "98765"
	_, err = repo.RegisterPersonnel(ctx, in)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"P1", "P2"}},
		{"maria", []string{"P1"}},
		{"SOUZA", []string{"P2"}},
		{"987", []string{"P2"}},
		{"  silva ", []string{"P1"}},
		{"nobody", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var ids []string
			for _, p := range repo.SearchPersonnel(tt.query) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestReopenRestoresState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados_efetivo.json")
	ctx := context.Background()

	store, err := storage.NewJSONStore(path, quietLogger())
	require.NoError(t, err)
	repo := openTest(t, store)

	p, err := repo.RegisterPersonnel(ctx, mariaInput())
	require.NoError(t, err)
	_, err = repo.LogLeave(ctx, p.ID, models.LeaveVacation,
		models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 10), "")
	require.NoError(t, err)
	before := repo.Snapshot()
	require.NoError(t, repo.Close())

	store, err = storage.NewJSONStore(path, quietLogger())
	require.NoError(t, err)
	reopened := openTest(t, store)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.Equal(t, before, reopened.Snapshot())
	assert.Equal(t, 20, reopened.FindPersonnelByID("P1").VacationBalance)

	rec, err := reopened.LogLeave(ctx, "P1", models.LeaveAbstention,
		models.NewDate(2024, time.February, 1), models.NewDate(2024, time.February, 1), "")
	require.NoError(t, err)
	assert.Equal(t, "L2", rec.ID)
}

func TestOpen_LoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados_efetivo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"personnel": {}}`), 0o644))

	store, err := storage.NewJSONStore(path, quietLogger())
	require.NoError(t, err)

	_, err = Open(context.Background(), store, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, models.IsCorruptState(err))
}

func TestClose(t *testing.T) {
	store := &memoryStore{}
	repo := openTest(t, store)

	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())
	assert.True(t, store.closed)

	_, err := repo.RegisterPersonnel(context.Background(), mariaInput())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = repo.LogLeave(context.Background(), "P1", models.LeaveVacation,
		models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 1), "")
	assert.ErrorIs(t, err, ErrClosed)
}
