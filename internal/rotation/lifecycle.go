package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/store"
)

// Manager owns every write to Assignment rows, BreakRecord rows and
// Dealer.Status. A single mutex serializes mutating operations and
// each operation commits inside one transaction, so overlapping timer
// ticks never observe a half-applied rotation.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// Assign places a dealer on a table. Any open assignment the dealer
// holds is ended first (a rotation, not a double-booking), as is any
// open assignment on the target table by another dealer. A scheduled
// time in the past rolls forward one day.
func (m *Manager) Assign(ctx context.Context, dealerID, tableID string, scheduled *time.Time, actorID string, autoCreated bool) (model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	var created model.Assignment

	err := m.store.Mutate(ctx, func(tx *gorm.DB) error {
		var dealer model.Dealer
		if err := tx.First(&dealer, "id = ?", dealerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrDealerNotFound, dealerID)
			}
			return err
		}

		var table model.GameTable
		if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
			}
			return err
		}

		if table.GameType == model.GameCraps {
			return fmt.Errorf("%w: %s", ErrUnsupportedGameType, table.TableNumber)
		}

		if err := m.closeOpenAssignment(tx, "dealer_id = ?", dealerID, now); err != nil {
			return err
		}
		// A tap-in: the incumbent on the target table steps off.
		if err := m.closeOpenAssignment(tx, "table_id = ?", tableID, now); err != nil {
			return err
		}
		// Pulling a dealer onto a table ends any break they are on, so
		// the break monitor cannot later flip them back to Available
		// mid-assignment.
		if _, err := m.closeOpenBreak(tx, dealerID, actorID, now); err != nil {
			return err
		}

		start := now
		if scheduled != nil {
			start = scheduled.UTC()
			if start.Before(now) {
				// Next-occurrence policy for already-passed clock times.
				start = start.Add(24 * time.Hour)
			}
		}

		created = model.Assignment{
			DealerID:    dealerID,
			TableID:     tableID,
			StartTime:   start,
			IsCurrent:   true,
			AutoCreated: autoCreated,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if err := setDealerStatus(tx, dealerID, model.DealerDealing); err != nil {
			return err
		}

		desc := fmt.Sprintf("Dealer %s assigned to table %s", dealer.Name, table.TableNumber)
		return m.store.AppendAudit(tx, actorID, model.ActionDealerAssigned, "assignment", created.ID, desc)
	})
	if err != nil {
		return model.Assignment{}, err
	}
	return created, nil
}

// EndAssignment ends the open assignment on a table (a manual "push").
// Returns nil without error when the table has no active assignment.
func (m *Manager) EndAssignment(ctx context.Context, tableID, actorID string) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	var ended *model.Assignment

	err := m.store.Mutate(ctx, func(tx *gorm.DB) error {
		var open []model.Assignment
		if err := tx.Where("table_id = ? AND is_current = ? AND end_time IS NULL", tableID, true).
			Limit(1).Find(&open).Error; err != nil {
			return err
		}
		if len(open) == 0 {
			return nil
		}
		a := open[0]
		a.EndTime = &now
		a.IsCurrent = false
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		if err := setDealerStatus(tx, a.DealerID, model.DealerAvailable); err != nil {
			return err
		}
		ended = &a
		desc := fmt.Sprintf("Dealer %s pushed from table %s", a.DealerID, tableID)
		return m.store.AppendAudit(tx, actorID, model.ActionDealerPushed, "assignment", a.ID, desc)
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// SendToBreak ends any open assignment for the dealer and opens a
// break record. A non-positive duration falls back to the standard
// duration for the break type.
func (m *Manager) SendToBreak(ctx context.Context, dealerID string, breakType model.BreakType, durationMinutes int, actorID string) (model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if durationMinutes <= 0 {
		durationMinutes = breakType.ExpectedMinutes()
	}
	var record model.BreakRecord

	err := m.store.Mutate(ctx, func(tx *gorm.DB) error {
		var dealer model.Dealer
		if err := tx.First(&dealer, "id = ?", dealerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrDealerNotFound, dealerID)
			}
			return err
		}

		if err := m.closeOpenAssignment(tx, "dealer_id = ?", dealerID, now); err != nil {
			return err
		}
		// A dealer already on break rolls into the new break; the old
		// record is closed first so at most one stays open.
		if _, err := m.closeOpenBreak(tx, dealerID, actorID, now); err != nil {
			return err
		}

		record = model.BreakRecord{
			DealerID:        dealerID,
			Type:            breakType,
			StartTime:       now,
			DurationMinutes: durationMinutes,
			Compliant:       true,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		status := model.DealerOnBreak
		if breakType == model.BreakMeal {
			status = model.DealerOnMeal
		}
		if err := setDealerStatus(tx, dealerID, status); err != nil {
			return err
		}

		desc := fmt.Sprintf("Dealer %s started a %d minute %s", dealer.Name, durationMinutes, breakType)
		return m.store.AppendAudit(tx, actorID, model.ActionBreakStarted, "break_record", record.ID, desc)
	})
	if err != nil {
		return model.BreakRecord{}, err
	}
	return record, nil
}

// EndBreak closes the dealer's open break record and returns them to
// Available. Returns nil without error when no break is open.
func (m *Manager) EndBreak(ctx context.Context, dealerID, actorID string) (*model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	var ended *model.BreakRecord

	err := m.store.Mutate(ctx, func(tx *gorm.DB) error {
		b, err := m.closeOpenBreak(tx, dealerID, actorID, now)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		ended = b
		return setDealerStatus(tx, dealerID, model.DealerAvailable)
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// SendHome ends any open assignment and marks the dealer sent home.
func (m *Manager) SendHome(ctx context.Context, dealerID, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	return m.store.Mutate(ctx, func(tx *gorm.DB) error {
		var dealer model.Dealer
		if err := tx.First(&dealer, "id = ?", dealerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrDealerNotFound, dealerID)
			}
			return err
		}
		if err := m.closeOpenAssignment(tx, "dealer_id = ?", dealerID, now); err != nil {
			return err
		}
		// Leaving the floor also ends any break, so the break monitor
		// cannot later mark a sent-home dealer Available.
		if _, err := m.closeOpenBreak(tx, dealerID, actorID, now); err != nil {
			return err
		}
		if err := setDealerStatus(tx, dealerID, model.DealerSentHome); err != nil {
			return err
		}
		desc := fmt.Sprintf("Dealer %s sent home", dealer.Name)
		return m.store.AppendAudit(tx, actorID, model.ActionDealerStatusChanged, "dealer", dealerID, desc)
	})
}

// Swap exchanges the tables of two dealers' open assignments. A no-op
// when either dealer has no open assignment; callers check
// postconditions.
func (m *Manager) Swap(ctx context.Context, dealerA, dealerB, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Mutate(ctx, func(tx *gorm.DB) error {
		openFor := func(dealerID string) (*model.Assignment, error) {
			var open []model.Assignment
			if err := tx.Where("dealer_id = ? AND is_current = ? AND end_time IS NULL", dealerID, true).
				Limit(1).Find(&open).Error; err != nil {
				return nil, err
			}
			if len(open) == 0 {
				return nil, nil
			}
			return &open[0], nil
		}

		a, err := openFor(dealerA)
		if err != nil {
			return err
		}
		b, err := openFor(dealerB)
		if err != nil {
			return err
		}
		if a == nil || b == nil {
			return nil
		}

		a.TableID, b.TableID = b.TableID, a.TableID
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		// A swap is two reassignments; no status changes hands.
		descA := fmt.Sprintf("Dealer %s moved to table %s in a swap with dealer %s", dealerA, a.TableID, dealerB)
		if err := m.store.AppendAudit(tx, actorID, model.ActionDealerAssigned, "assignment", a.ID, descA); err != nil {
			return err
		}
		descB := fmt.Sprintf("Dealer %s moved to table %s in a swap with dealer %s", dealerB, b.TableID, dealerA)
		return m.store.AppendAudit(tx, actorID, model.ActionDealerAssigned, "assignment", b.ID, descB)
	})
}

// closeOpenAssignment ends the open assignment matched by the query,
// returning its dealer to Available. Closing is idempotent: no open
// row, no writes.
func (m *Manager) closeOpenAssignment(tx *gorm.DB, query string, arg any, now time.Time) error {
	var open []model.Assignment
	if err := tx.Where(query, arg).Where("is_current = ? AND end_time IS NULL", true).
		Find(&open).Error; err != nil {
		return err
	}
	for _, a := range open {
		a.EndTime = &now
		a.IsCurrent = false
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		if err := setDealerStatus(tx, a.DealerID, model.DealerAvailable); err != nil {
			return err
		}
	}
	return nil
}

// closeOpenBreak ends the dealer's open break record, if any, and
// writes the BreakEnded audit entry. Assign and SendToBreak call this
// so no dealer ever holds more than one open record; the caller owns
// the dealer's status transition.
func (m *Manager) closeOpenBreak(tx *gorm.DB, dealerID, actorID string, now time.Time) (*model.BreakRecord, error) {
	var open []model.BreakRecord
	if err := tx.Where("dealer_id = ? AND end_time IS NULL", dealerID).
		Limit(1).Find(&open).Error; err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	b := open[0]
	b.EndTime = &now
	// One minute of grace so poll cadence alone never flags a break.
	b.Compliant = !now.After(b.StartTime.Add(b.Expected()).Add(time.Minute))
	if err := tx.Save(&b).Error; err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Dealer %s returned from %s", dealerID, b.Type)
	if err := m.store.AppendAudit(tx, actorID, model.ActionBreakEnded, "break_record", b.ID, desc); err != nil {
		return nil, err
	}
	return &b, nil
}

func setDealerStatus(tx *gorm.DB, dealerID string, status model.DealerStatus) error {
	return tx.Model(&model.Dealer{}).Where("id = ?", dealerID).
		Update("status", status).Error
}
