// Package storage persists the whole roster as a single snapshot.
//
// A Store never writes incrementally: Save replaces the stored snapshot with
// the given state and Load returns a freshly decoded copy. Two backends exist,
// a JSON document on disk (the default) and a SQLite database through gorm.
package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store loads and saves full AppState snapshots.
type Store interface {
	// Load returns an empty state when nothing has been saved yet.
	// A snapshot that does not match the entity schemas yields *models.CorruptStateError.
	Load(ctx context.Context) (*models.AppState, error)

	// Save replaces the stored snapshot with state.
	Save(ctx context.Context, state *models.AppState) error

	Close() error
}

// Open builds the Store selected by driver. dsn is the JSON file path or the
// SQLite database path.
func Open(driver, dsn string, logger *logrus.Logger) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(dsn, logger)
	case DriverSQLite:
		return NewGormStore(dsn, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// finishLoad runs the checks shared by every backend on a decoded snapshot.
func finishLoad(state *models.AppState, source string, logger *logrus.Logger) (*models.AppState, error) {
	if err := state.Validate(); err != nil {
		return nil, &models.CorruptStateError{Source: source, Err: err}
	}
	state.ReconcileSequence()

	for _, v := range state.UnknownEnumValues() {
		logger.WithField("source", source).Warnf("Unrecognized value kept as-is: %s", v)
	}
	for _, id := range state.DanglingLeaves() {
		logger.WithFields(logrus.Fields{"source": source, "leave_id": id}).
			Warn("Leave references a personnel id that does not exist")
	}

	logger.WithFields(logrus.Fields{
		"source":    source,
		"personnel": len(state.Personnel),
		"leaves":    len(state.Leaves),
	}).Debug("State loaded")
	return state, nil
}

func loggerOrDefault(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
