package rotation

import (
	"context"
	"log"
	"time"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/parse"
	"pitboss-backend/internal/store"
)

// SweepError records one table's failure inside a sweep pass.
type SweepError struct {
	TableNumber string `json:"table_number"`
	Error       string `json:"error"`
}

// SweepResult reports what a sweep pass did.
type SweepResult struct {
	AssignmentsCreated int          `json:"assignments_created"`
	TablesStaffed      []string     `json:"tables_staffed"`
	Errors             []SweepError `json:"errors"`
}

// Sweeper staffs open, unstaffed, non-craps tables from the ranked
// candidate list.
type Sweeper struct {
	store      store.Store
	scorer     *Scorer
	manager    *Manager
	allowReuse bool
}

// NewSweeper creates a sweeper. allowReuse controls what happens when
// every ranked candidate has already been claimed earlier in the same
// pass: reuse the top candidate (closing their fresh assignment first)
// or report the table as unstaffable.
func NewSweeper(s store.Store, scorer *Scorer, manager *Manager, allowReuse bool) *Sweeper {
	return &Sweeper{store: s, scorer: scorer, manager: manager, allowReuse: allowReuse}
}

// SweepEmptyTables scans all open, unlocked, non-craps tables without
// an open assignment and staffs each with its best-ranked dealer.
// Per-table failures are collected and never abort the pass.
func (s *Sweeper) SweepEmptyTables(ctx context.Context) SweepResult {
	result := SweepResult{
		TablesStaffed: []string{},
		Errors:        []SweepError{},
	}

	tables, err := s.store.OpenTables(ctx)
	if err != nil {
		log.Printf("sweep: failed to list open tables: %v", err)
		result.Errors = append(result.Errors, SweepError{Error: err.Error()})
		return result
	}

	claimed := make(map[string]bool)

	for _, table := range tables {
		if table.GameType == model.GameCraps {
			continue
		}

		open, err := s.store.OpenAssignmentForTable(ctx, table.ID)
		if err != nil {
			result.Errors = append(result.Errors, SweepError{TableNumber: table.TableNumber, Error: err.Error()})
			continue
		}
		if open != nil {
			continue
		}

		req := requirementFromTable(table)
		candidates, _, err := s.scorer.FindQualified(ctx, req)
		if err != nil {
			result.Errors = append(result.Errors, SweepError{TableNumber: table.TableNumber, Error: err.Error()})
			continue
		}

		pick, ok := s.pickCandidate(candidates, claimed)
		if !ok {
			result.Errors = append(result.Errors, SweepError{
				TableNumber: table.TableNumber,
				Error:       ErrNoQualifiedCandidates.Error(),
			})
			continue
		}

		if _, err := s.manager.Assign(ctx, pick.Dealer.ID, table.ID, nil, model.SystemActorID, true); err != nil {
			result.Errors = append(result.Errors, SweepError{TableNumber: table.TableNumber, Error: err.Error()})
			continue
		}

		claimed[pick.Dealer.ID] = true
		result.AssignmentsCreated++
		result.TablesStaffed = append(result.TablesStaffed, table.TableNumber)
	}

	return result
}

// pickCandidate prefers the best-ranked dealer not yet claimed in this
// pass. When every candidate is claimed the reuse policy decides:
// rotation is sequential, so reusing the top candidate closes their
// prior assignment rather than double-booking them.
func (s *Sweeper) pickCandidate(candidates []Candidate, claimed map[string]bool) (Candidate, bool) {
	for _, c := range candidates {
		if !claimed[c.Dealer.ID] {
			return c, true
		}
	}
	if s.allowReuse && len(candidates) > 0 {
		return candidates[0], true
	}
	return Candidate{}, false
}

// requirementFromTable builds the staffing requirement a table implies
// for itself.
func requirementFromTable(table model.GameTable) parse.Requirement {
	return parse.Requirement{
		TableNumber: table.TableNumber,
		GameType:    table.GameType,
		HighLimit:   table.HighLimit(),
		Area:        table.Area,
		DealerCount: table.RequiredDealers,
	}
}

// RunSweep runs periodic sweep passes until the context is cancelled.
func (s *Sweeper) RunSweep(ctx context.Context, interval time.Duration) {
	log.Println("Starting auto-assignment sweep...")
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweep loop shutting down.")
			return
		case <-timer.C:
			result := s.SweepEmptyTables(ctx)
			if result.AssignmentsCreated > 0 || len(result.Errors) > 0 {
				log.Printf("sweep: staffed %d tables, %d errors", result.AssignmentsCreated, len(result.Errors))
			}
			timer.Reset(interval)
		}
	}
}
