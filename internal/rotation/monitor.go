package rotation

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/store"
)

// AssignmentState is the expiry state of an active assignment.
type AssignmentState string

const (
	StateRunning AssignmentState = "running"
	StateWarning AssignmentState = "warning"
	StateExpired AssignmentState = "expired"
)

// Alert is one raised rotation-expiry alert, exposed to the API and
// to the notification dispatcher.
type Alert struct {
	AssignmentID string    `json:"assignment_id"`
	DealerID     string    `json:"dealer_id"`
	TableID      string    `json:"table_id"`
	TableNumber  string    `json:"table_number"`
	Area         string    `json:"area"`
	RaisedAt     time.Time `json:"raised_at"`
	Deadline     time.Time `json:"deadline"`
	Dismissed    bool      `json:"dismissed"`
}

type trackedAlert struct {
	alert Alert
	timer *time.Timer
}

// RotationMonitor polls active assignments and forces rotation once an
// assignment exceeds its table's rotation limit. Each assignment
// triggers at most one alert cycle: the processed entry lives until
// the assignment closes, however often the poll repeats.
type RotationMonitor struct {
	mu        sync.Mutex
	store     store.Store
	manager   *Manager
	limit     time.Duration // floor default when the table has none
	warning   time.Duration
	countdown time.Duration
	breakMin  int
	processed map[string]*trackedAlert // keyed by assignment id
	notify    func(Alert)              // optional alert fan-out
	now       func() time.Time
}

// NewRotationMonitor creates a rotation expiry monitor.
func NewRotationMonitor(s store.Store, manager *Manager, limit, warning, countdown time.Duration, breakMinutes int) *RotationMonitor {
	return &RotationMonitor{
		store:     s,
		manager:   manager,
		limit:     limit,
		warning:   warning,
		countdown: countdown,
		breakMin:  breakMinutes,
		processed: make(map[string]*trackedAlert),
		now:       time.Now,
	}
}

// SetNotifier registers a callback invoked once per raised alert.
func (m *RotationMonitor) SetNotifier(fn func(Alert)) {
	m.notify = fn
}

// Run polls at the given cadence until the context is cancelled.
func (m *RotationMonitor) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting rotation expiry monitor...")
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Rotation expiry monitor shutting down.")
			m.cancelAll()
			return
		case <-timer.C:
			m.Check(ctx)
			timer.Reset(interval)
		}
	}
}

// Check performs one poll: prune guard entries for closed assignments,
// then raise an alert and start the countdown for each newly expired
// assignment. Calling Check repeatedly on a still-expired assignment
// raises nothing further.
func (m *RotationMonitor) Check(ctx context.Context) {
	open, err := m.store.OpenAssignments(ctx)
	if err != nil {
		log.Printf("rotation monitor: failed to list open assignments: %v", err)
		return
	}

	openIDs := make(map[string]bool, len(open))
	for _, a := range open {
		openIDs[a.ID] = true
	}

	m.mu.Lock()
	for id, tracked := range m.processed {
		if !openIDs[id] {
			tracked.timer.Stop()
			delete(m.processed, id)
		}
	}
	m.mu.Unlock()

	now := m.now().UTC()
	for _, a := range open {
		table, err := m.store.Table(ctx, a.TableID)
		if err != nil {
			log.Printf("rotation monitor: assignment %s references missing table %s: %v", a.ID, a.TableID, err)
			continue
		}
		// Only locked and closed tables are exempt; a table waiting on
		// more staff still rotates whoever is on it.
		if table.Locked || table.Status == model.TableClosed || table.Status == model.TableLocked {
			continue
		}
		limit := m.tableLimit(table)
		if now.Sub(a.StartTime) < limit {
			continue
		}
		m.raise(a, table, now)
	}
}

// State classifies an active assignment against its table's limit.
func (m *RotationMonitor) State(assignment model.Assignment, table model.GameTable) AssignmentState {
	elapsed := m.now().UTC().Sub(assignment.StartTime)
	limit := m.tableLimit(table)
	switch {
	case elapsed >= limit:
		return StateExpired
	case elapsed >= limit-m.warning:
		return StateWarning
	}
	return StateRunning
}

// Alerts returns the currently raised, undismissed alerts, oldest
// first.
func (m *RotationMonitor) Alerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	alerts := make([]Alert, 0, len(m.processed))
	for _, tracked := range m.processed {
		if !tracked.alert.Dismissed {
			alerts = append(alerts, tracked.alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].RaisedAt.Before(alerts[j].RaisedAt)
	})
	return alerts
}

// Dismiss cancels the pending auto-rotation for an assignment. Returns
// false when no alert is pending for the id. The guard entry stays
// until the assignment closes so the alert cannot re-fire.
func (m *RotationMonitor) Dismiss(assignmentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracked, ok := m.processed[assignmentID]
	if !ok || tracked.alert.Dismissed {
		return false
	}
	tracked.timer.Stop()
	tracked.alert.Dismissed = true
	return true
}

func (m *RotationMonitor) tableLimit(table model.GameTable) time.Duration {
	if table.RotationMinutes > 0 {
		return table.RotationLimit()
	}
	return m.limit
}

func (m *RotationMonitor) raise(a model.Assignment, table model.GameTable, now time.Time) {
	m.mu.Lock()
	if _, seen := m.processed[a.ID]; seen {
		m.mu.Unlock()
		return
	}

	alert := Alert{
		AssignmentID: a.ID,
		DealerID:     a.DealerID,
		TableID:      a.TableID,
		TableNumber:  table.TableNumber,
		Area:         table.Area,
		RaisedAt:     now,
		Deadline:     now.Add(m.countdown),
	}
	assignmentID := a.ID
	tracked := &trackedAlert{alert: alert}
	tracked.timer = time.AfterFunc(m.countdown, func() {
		m.autoRotate(assignmentID)
	})
	m.processed[a.ID] = tracked
	m.mu.Unlock()

	log.Printf("rotation monitor: assignment %s on table %s exceeded the rotation limit, auto-rotating in %s",
		a.ID, table.TableNumber, m.countdown)
	if m.notify != nil {
		m.notify(alert)
	}
}

// autoRotate fires when a countdown elapses with no human action: push
// the dealer off the table and start a standard break. The assignment
// is re-checked first; a manual push or dismissal in the window wins.
func (m *RotationMonitor) autoRotate(assignmentID string) {
	ctx := context.Background()

	m.mu.Lock()
	tracked, ok := m.processed[assignmentID]
	if !ok || tracked.alert.Dismissed {
		m.mu.Unlock()
		return
	}
	tableID := tracked.alert.TableID
	dealerID := tracked.alert.DealerID
	m.mu.Unlock()

	ended, err := m.manager.EndAssignment(ctx, tableID, model.SystemActorID)
	if err != nil {
		log.Printf("rotation monitor: auto-rotation failed for assignment %s: %v", assignmentID, err)
		return
	}
	if ended == nil || ended.ID != assignmentID {
		// Someone already rotated the table; nothing left to do.
		return
	}

	if _, err := m.manager.SendToBreak(ctx, dealerID, model.BreakShort, m.breakMin, model.SystemActorID); err != nil {
		log.Printf("rotation monitor: failed to start break for dealer %s: %v", dealerID, err)
	}
}

func (m *RotationMonitor) cancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tracked := range m.processed {
		tracked.timer.Stop()
	}
}

// BreakMonitor returns dealers from break once their allotted time is
// up. It keeps its own processed set, separate from the rotation
// monitor's, pruned as break records close.
type BreakMonitor struct {
	mu        sync.Mutex
	store     store.Store
	manager   *Manager
	processed map[string]bool // keyed by break record id
	now       func() time.Time
}

// NewBreakMonitor creates a break expiry monitor.
func NewBreakMonitor(s store.Store, manager *Manager) *BreakMonitor {
	return &BreakMonitor{
		store:     s,
		manager:   manager,
		processed: make(map[string]bool),
		now:       time.Now,
	}
}

// Run polls at the given cadence until the context is cancelled.
func (b *BreakMonitor) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting break expiry monitor...")
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Break expiry monitor shutting down.")
			return
		case <-timer.C:
			b.Check(ctx)
			timer.Reset(interval)
		}
	}
}

// Check ends every open break whose elapsed time has reached its
// expected duration. One malformed record is logged and skipped, never
// stopping the rest of the poll.
func (b *BreakMonitor) Check(ctx context.Context) {
	open, err := b.store.OpenBreaks(ctx)
	if err != nil {
		log.Printf("break monitor: failed to list open breaks: %v", err)
		return
	}

	openIDs := make(map[string]bool, len(open))
	for _, rec := range open {
		openIDs[rec.ID] = true
	}

	b.mu.Lock()
	for id := range b.processed {
		if !openIDs[id] {
			delete(b.processed, id)
		}
	}
	b.mu.Unlock()

	now := b.now().UTC()
	for _, rec := range open {
		if now.Sub(rec.StartTime) < rec.Expected() {
			continue
		}

		b.mu.Lock()
		if b.processed[rec.ID] {
			b.mu.Unlock()
			continue
		}
		b.processed[rec.ID] = true
		b.mu.Unlock()

		if _, err := b.manager.EndBreak(ctx, rec.DealerID, model.SystemActorID); err != nil {
			log.Printf("break monitor: failed to end break %s for dealer %s: %v", rec.ID, rec.DealerID, err)
			continue
		}
	}
}
