package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-roster/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleState() *models.AppState {
	created := time.Date(2024, time.January, 2, 8, 30, 0, 123456789, time.UTC)
	state := models.NewAppState()
	state.Personnel = []models.Personnel{
		{
			ID: "P1", Seniority: 1, Rank: models.RankCAP, Corps: "QOPM", Name: "Maria Silva",
			Registration: "12345", Unit: "DLF", Section: "SAD", Status: "ATIVO", DutySchedule: "EXP",
			VacationBalance: 20, SpecialLeaveBalance: 5, Role: models.RoleAdmin,
		},
		{
			ID: "P2", Seniority: 2, Rank: models.Rank1SGT, Corps: "QPPMC", Name: "João Souza",
			Registration: "54321", Unit: "DLF", Section: "SAD", Status: "ATIVO", DutySchedule: "24x72",
			VacationBalance: 30, SpecialLeaveBalance: 3, Role: models.RoleUser,
		},
	}
	state.Leaves = []models.LeaveRecord{
		{
			ID: "L1", PersonnelID: "P1", Type: models.LeaveVacation,
			StartDate: models.NewDate(2024, 1, 1), EndDate: models.NewDate(2024, 1, 10),
			Description: "férias <anuais> & descanso", CreatedAt: models.NewTimestamp(created),
		},
		{
			ID: "L2", PersonnelID: "P2", Type: models.LeaveAbstention,
			StartDate: models.NewDate(2024, 2, 5), EndDate: models.NewDate(2024, 2, 6),
			CreatedAt: models.NewTimestamp(created.Add(time.Hour)),
		},
		{
			ID: "L3", PersonnelID: "P2", Type: models.LeaveRestriction,
			StartDate: models.NewDate(2024, 3, 1), EndDate: models.NewDate(2024, 3, 1),
			Description: "médica", CreatedAt: models.NewTimestamp(created.Add(2 * time.Hour)),
		},
	}
	state.Sequence = models.Sequence{Personnel: 2, Leaves: 3}
	return state
}

func TestOpen_SelectsDriver(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(DriverJSON, filepath.Join(dir, "state.json"), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(DriverSQLite, filepath.Join(dir, "state.db"), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &GormStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("mongo", "x", quietLogger())
	assert.Error(t, err)
}

// Both backends must satisfy the same snapshot contract.
func TestStores_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{DriverJSON, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			store, err := Open(driver, filepath.Join(t.TempDir(), "state"), quietLogger())
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty.Personnel)
			assert.Empty(t, empty.Leaves)

			want := sampleState()
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			// save(load()) reproduces the same state
			require.NoError(t, store.Save(ctx, got))
			again, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, again)
		})
	}
}

func TestStores_SaveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{DriverJSON, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			store, err := Open(driver, filepath.Join(t.TempDir(), "state"), quietLogger())
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			require.NoError(t, store.Save(ctx, sampleState()))

			smaller := sampleState()
			smaller.Personnel = smaller.Personnel[:1]
			smaller.Leaves = smaller.Leaves[:1]
			require.NoError(t, store.Save(ctx, smaller))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, got.Personnel, 1)
			assert.Len(t, got.Leaves, 1)
			// counters never move backwards
			assert.Equal(t, "P3", got.NextPersonnelID())
			assert.Equal(t, "L4", got.NextLeaveID())
		})
	}
}

func TestStores_UnknownEnumValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{DriverJSON, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			store, err := Open(driver, filepath.Join(t.TempDir(), "state"), quietLogger())
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			state := sampleState()
			state.Personnel[0].Rank = "GEN"
			state.Leaves[2].Type = "TELETRABALHO"
			require.NoError(t, store.Save(ctx, state))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Rank("GEN"), got.Personnel[0].Rank)
			assert.Equal(t, models.LeaveType("TELETRABALHO"), got.Leaves[2].Type)
		})
	}
}

func TestStores_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := NewJSONStore(filepath.Join(t.TempDir(), "state.json"), quietLogger())
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save(ctx, sampleState()), context.Canceled)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
