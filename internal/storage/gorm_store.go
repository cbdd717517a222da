package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"unit-roster/internal/models"
)

type personnelRow struct {
	Position            int    `gorm:"primaryKey;autoIncrement:false"`
	PersonnelID         string `gorm:"uniqueIndex;not null"`
	Seniority           int    `gorm:"not null;default:0"`
	Rank                string `gorm:"type:varchar(20);not null"`
	Corps               string
	Name                string `gorm:"not null"`
	Registration        string `gorm:"not null;index"`
	Unit                string
	Section             string
	Status              string
	DutySchedule        string
	VacationBalance     int    `gorm:"not null;default:0"`
	SpecialLeaveBalance int    `gorm:"not null;default:0"`
	Role                string `gorm:"type:varchar(10);not null"`
}

func (personnelRow) TableName() string {
	return "personnel"
}

type leaveRow struct {
	Position    int    `gorm:"primaryKey;autoIncrement:false"`
	LeaveID     string `gorm:"uniqueIndex;not null"`
	PersonnelID string `gorm:"not null;index"`
	Type        string `gorm:"type:varchar(30);not null"`
	StartDate   string `gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	EndDate     string `gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	Description string `gorm:"type:text"`
	LoggedAt    string `gorm:"column:created_at;type:varchar(40);not null"`
}

func (leaveRow) TableName() string {
	return "leave_records"
}

type sequenceRow struct {
	Name  string `gorm:"primaryKey"`
	Value int    `gorm:"not null"`
}

func (sequenceRow) TableName() string {
	return "state_sequences"
}

const (
	sequencePersonnel = "personnel"
	sequenceLeaves    = "leaves"
)

// GormStore keeps the snapshot in SQLite. Each Save rewrites every table in one transaction.
type GormStore struct {
	db     *gorm.DB
	source string
	logger *logrus.Logger
}

func NewGormStore(dsn string, logger *logrus.Logger) (*GormStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := NewGormStoreFromDB(db, logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	store.source = dsn
	return store, nil
}

// NewGormStoreFromDB migrates the snapshot tables on an existing connection.
func NewGormStoreFromDB(db *gorm.DB, logger *logrus.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&personnelRow{}, &leaveRow{}, &sequenceRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return &GormStore{db: db, source: "database", logger: loggerOrDefault(logger)}, nil
}

func (s *GormStore) Load(ctx context.Context) (*models.AppState, error) {
	db := s.db.WithContext(ctx)

	var pRows []personnelRow
	if err := db.Order("position").Find(&pRows).Error; err != nil {
		return nil, fmt.Errorf("load personnel: %w", err)
	}
	var lRows []leaveRow
	if err := db.Order("position").Find(&lRows).Error; err != nil {
		return nil, fmt.Errorf("load leaves: %w", err)
	}
	var sRows []sequenceRow
	if err := db.Find(&sRows).Error; err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	state := models.NewAppState()
	for _, row := range pRows {
		state.Personnel = append(state.Personnel, row.toModel())
	}
	for _, row := range lRows {
		rec, err := row.toModel()
		if err != nil {
			return nil, &models.CorruptStateError{
				Source: s.source,
				Err:    fmt.Errorf("leave %s: %w", row.LeaveID, err),
			}
		}
		state.Leaves = append(state.Leaves, rec)
	}
	for _, row := range sRows {
		switch row.Name {
		case sequencePersonnel:
			state.Sequence.Personnel = row.Value
		case sequenceLeaves:
			state.Sequence.Leaves = row.Value
		default:
			return nil, &models.CorruptStateError{
				Source: s.source,
				Err:    fmt.Errorf("unknown sequence %q", row.Name),
			}
		}
	}

	return finishLoad(state, s.source, s.logger)
}

func (s *GormStore) Save(ctx context.Context, state *models.AppState) error {
	pRows := make([]personnelRow, 0, len(state.Personnel))
	for i, p := range state.Personnel {
		pRows = append(pRows, personnelRowFrom(i+1, p))
	}
	lRows := make([]leaveRow, 0, len(state.Leaves))
	for i, l := range state.Leaves {
		lRows = append(lRows, leaveRowFrom(i+1, l))
	}
	sRows := []sequenceRow{
		{Name: sequencePersonnel, Value: state.Sequence.Personnel},
		{Name: sequenceLeaves, Value: state.Sequence.Leaves},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"personnel", "leave_records", "state_sequences"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if len(pRows) > 0 {
			if err := tx.CreateInBatches(pRows, 200).Error; err != nil {
				return fmt.Errorf("save personnel: %w", err)
			}
		}
		if len(lRows) > 0 {
			if err := tx.CreateInBatches(lRows, 200).Error; err != nil {
				return fmt.Errorf("save leaves: %w", err)
			}
		}
		if err := tx.Create(&sRows).Error; err != nil {
			return fmt.Errorf("save sequences: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func personnelRowFrom(pos int, p models.Personnel) personnelRow {
	return personnelRow{
		Position:            pos,
		PersonnelID:         p.ID,
		Seniority:           p.Seniority,
		Rank:                string(p.Rank),
		Corps:               p.Corps,
		Name:                p.Name,
		Registration:        p.Registration,
		Unit:                p.Unit,
		Section:             p.Section,
		Status:              p.Status,
		DutySchedule:        p.DutySchedule,
		VacationBalance:     p.VacationBalance,
		SpecialLeaveBalance: p.SpecialLeaveBalance,
		Role:                string(p.Role),
	}
}

func (row personnelRow) toModel() models.Personnel {
	return models.Personnel{
		ID:                  row.PersonnelID,
		Seniority:           row.Seniority,
		Rank:                models.Rank(row.Rank),
		Corps:               row.Corps,
		Name:                row.Name,
		Registration:        row.Registration,
		Unit:                row.Unit,
		Section:             row.Section,
		Status:              row.Status,
		DutySchedule:        row.DutySchedule,
		VacationBalance:     row.VacationBalance,
		SpecialLeaveBalance: row.SpecialLeaveBalance,
		Role:                models.UserRole(row.Role),
	}
}

func leaveRowFrom(pos int, l models.LeaveRecord) leaveRow {
	return leaveRow{
		Position:    pos,
		LeaveID:     l.ID,
		PersonnelID: l.PersonnelID,
		Type:        string(l.Type),
		StartDate:   l.StartDate.String(),
		EndDate:     l.EndDate.String(),
		Description: l.Description,
		LoggedAt:    l.CreatedAt.String(),
	}
}

func (row leaveRow) toModel() (models.LeaveRecord, error) {
	start, err := models.ParseDate(row.StartDate)
	if err != nil {
		return models.LeaveRecord{}, err
	}
	end, err := models.ParseDate(row.EndDate)
	if err != nil {
		return models.LeaveRecord{}, err
	}
	created, err := models.ParseTimestamp(row.LoggedAt)
	if err != nil {
		return models.LeaveRecord{}, err
	}
	return models.LeaveRecord{
		ID:          row.LeaveID,
		PersonnelID: row.PersonnelID,
		Type:        models.LeaveType(row.Type),
		StartDate:   start,
		EndDate:     end,
		Description: row.Description,
		CreatedAt:   created,
	}, nil
}
