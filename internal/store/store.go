package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pitboss-backend/internal/model"
)

// Store defines the record access used by the engine. All readers are
// synchronous; multi-step writes go through Mutate so that a full set
// of related changes commits as one unit.
type Store interface {
	DB() *gorm.DB

	Dealer(ctx context.Context, id string) (model.Dealer, error)
	Roster(ctx context.Context) ([]model.Dealer, error)

	Table(ctx context.Context, id string) (model.GameTable, error)
	TableByNumber(ctx context.Context, number string) (model.GameTable, error)
	OpenTables(ctx context.Context) ([]model.GameTable, error)

	OpenAssignments(ctx context.Context) ([]model.Assignment, error)
	OpenAssignmentForDealer(ctx context.Context, dealerID string) (*model.Assignment, error)
	OpenAssignmentForTable(ctx context.Context, tableID string) (*model.Assignment, error)

	OpenBreaks(ctx context.Context) ([]model.BreakRecord, error)
	OpenBreakForDealer(ctx context.Context, dealerID string) (*model.BreakRecord, error)

	Mutate(ctx context.Context, fn func(tx *gorm.DB) error) error
	AppendAudit(tx *gorm.DB, actorID string, action model.AuditAction, entityType, entityID, description string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Dealer(ctx context.Context, id string) (model.Dealer, error) {
	var dealer model.Dealer
	err := s.db.WithContext(ctx).Preload("Certifications").First(&dealer, "id = ?", id).Error
	return dealer, err
}

// Roster returns every active dealer with certifications preloaded, in
// a stable order so scoring ties break deterministically.
func (s *gormStore) Roster(ctx context.Context) ([]model.Dealer, error) {
	var dealers []model.Dealer
	err := s.db.WithContext(ctx).
		Preload("Certifications").
		Where("active = ?", true).
		Order("created_at, id").
		Find(&dealers).Error
	return dealers, err
}

func (s *gormStore) Table(ctx context.Context, id string) (model.GameTable, error) {
	var table model.GameTable
	err := s.db.WithContext(ctx).First(&table, "id = ?", id).Error
	return table, err
}

func (s *gormStore) TableByNumber(ctx context.Context, number string) (model.GameTable, error) {
	var table model.GameTable
	err := s.db.WithContext(ctx).First(&table, "table_number = ?", number).Error
	return table, err
}

// OpenTables returns tables eligible for automation: status Open and
// not locked. Locked and Closed tables are never touched by the sweep
// or the expiry monitors.
func (s *gormStore) OpenTables(ctx context.Context) ([]model.GameTable, error) {
	var tables []model.GameTable
	err := s.db.WithContext(ctx).
		Where("status = ? AND locked = ?", model.TableOpen, false).
		Order("table_number").
		Find(&tables).Error
	return tables, err
}

func (s *gormStore) OpenAssignments(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Where("is_current = ? AND end_time IS NULL", true).
		Find(&assignments).Error
	return assignments, err
}

func (s *gormStore) OpenAssignmentForDealer(ctx context.Context, dealerID string) (*model.Assignment, error) {
	return firstOpen[model.Assignment](s.db.WithContext(ctx).
		Where("dealer_id = ? AND is_current = ? AND end_time IS NULL", dealerID, true))
}

func (s *gormStore) OpenAssignmentForTable(ctx context.Context, tableID string) (*model.Assignment, error) {
	return firstOpen[model.Assignment](s.db.WithContext(ctx).
		Where("table_id = ? AND is_current = ? AND end_time IS NULL", tableID, true))
}

func (s *gormStore) OpenBreaks(ctx context.Context) ([]model.BreakRecord, error) {
	var breaks []model.BreakRecord
	err := s.db.WithContext(ctx).
		Where("end_time IS NULL").
		Find(&breaks).Error
	return breaks, err
}

func (s *gormStore) OpenBreakForDealer(ctx context.Context, dealerID string) (*model.BreakRecord, error) {
	return firstOpen[model.BreakRecord](s.db.WithContext(ctx).
		Where("dealer_id = ? AND end_time IS NULL", dealerID))
}

// firstOpen fetches at most one row and maps "no row" to nil rather
// than an error, since an absent open record is a normal state.
func firstOpen[T any](q *gorm.DB) (*T, error) {
	var records []T
	if err := q.Limit(1).Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Mutate runs fn inside a transaction.
func (s *gormStore) Mutate(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// AppendAudit writes one audit entry within the caller's transaction.
func (s *gormStore) AppendAudit(tx *gorm.DB, actorID string, action model.AuditAction, entityType, entityID, description string) error {
	entry := model.AuditLog{
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	return tx.Create(&entry).Error
}
