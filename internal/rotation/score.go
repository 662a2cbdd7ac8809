package rotation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/parse"
	"pitboss-backend/internal/store"
)

// Scoring weights. Each signal contributes independently; the sum
// ranks candidates. Tunable in isolation from the store and timers.
const (
	weightCertified       = 50
	weightUncertified     = -100 // strong penalty, not an exclusion
	weightHighLimitSenior = 30   // seniority >= 5
	weightHighLimitMid    = 15   // seniority 3-4
	weightHighLimitJunior = -20  // seniority < 3
	weightSeniorityExact  = 40
	weightSeniorityClose  = 20 // off by one
	weightSeniorityMiss   = 10 // per level of difference, as a penalty
	weightAvailable       = 25
	weightDealing         = -10 // rotating them costs an extra step
	weightNoBreak         = 10
	weightAreaMatch       = 15
)

// Candidate is one ranked dealer with the score breakdown.
type Candidate struct {
	Dealer  model.Dealer `json:"dealer"`
	Score   int          `json:"score"`
	Reasons []string     `json:"reasons"`
}

// Scorer ranks candidate dealers for a table.
type Scorer struct {
	store store.Store
}

// NewScorer creates a scorer over the given store.
func NewScorer(s store.Store) *Scorer {
	return &Scorer{store: s}
}

// FindQualified resolves the requirement's table and returns every
// candidate dealer ranked by score, best first. The full list is
// returned, negative scores included; the caller decides the cutoff.
// Only an empty candidate pool is an error.
func (s *Scorer) FindQualified(ctx context.Context, req parse.Requirement) ([]Candidate, model.GameTable, error) {
	table, err := s.store.TableByNumber(ctx, req.TableNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.GameTable{}, fmt.Errorf("%w: %s", ErrTableNotFound, req.TableNumber)
		}
		return nil, model.GameTable{}, err
	}

	// Craps crews rotate manually only.
	if table.GameType == model.GameCraps {
		return nil, table, fmt.Errorf("%w: %s", ErrUnsupportedGameType, table.TableNumber)
	}

	roster, err := s.store.Roster(ctx)
	if err != nil {
		return nil, table, err
	}

	onBreak, err := s.openBreakSet(ctx)
	if err != nil {
		return nil, table, err
	}

	var candidates []Candidate
	for _, dealer := range roster {
		if dealer.Status != model.DealerAvailable && dealer.Status != model.DealerDealing {
			continue
		}
		score, reasons := ScoreDealer(dealer, table, req, onBreak[dealer.ID])
		candidates = append(candidates, Candidate{Dealer: dealer, Score: score, Reasons: reasons})
	}

	if len(candidates) == 0 {
		return nil, table, fmt.Errorf("%w for table %s", ErrNoQualifiedCandidates, table.TableNumber)
	}

	// Stable sort: ties keep roster order, so identical inputs always
	// produce identical rankings.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, table, nil
}

func (s *Scorer) openBreakSet(ctx context.Context) (map[string]bool, error) {
	breaks, err := s.store.OpenBreaks(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(breaks))
	for _, b := range breaks {
		set[b.DealerID] = true
	}
	return set, nil
}

// ScoreDealer computes the qualification score of one dealer for one
// table. Pure: the result depends only on the arguments.
func ScoreDealer(dealer model.Dealer, table model.GameTable, req parse.Requirement, onBreak bool) (int, []string) {
	score := 0
	var reasons []string

	if dealer.CertifiedFor(table.GameType) {
		score += weightCertified
		reasons = append(reasons, fmt.Sprintf("Certified for %s", table.GameType.DisplayName()))
	} else {
		score += weightUncertified
		reasons = append(reasons, fmt.Sprintf("Not certified for %s", table.GameType.DisplayName()))
	}

	if table.HighLimit() || req.HighLimit {
		switch {
		case dealer.Seniority >= 5:
			score += weightHighLimitSenior
			reasons = append(reasons, "Senior dealer suited for high limit")
		case dealer.Seniority >= 3:
			score += weightHighLimitMid
			reasons = append(reasons, "Mid-seniority dealer acceptable for high limit")
		default:
			score += weightHighLimitJunior
			reasons = append(reasons, "Junior dealer on a high limit table")
		}
	}

	if req.SeniorityLevel > 0 {
		diff := dealer.Seniority - req.SeniorityLevel
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += weightSeniorityExact
			reasons = append(reasons, fmt.Sprintf("Exactly the requested seniority level %d", req.SeniorityLevel))
		case 1:
			score += weightSeniorityClose
			reasons = append(reasons, fmt.Sprintf("One level from requested seniority %d", req.SeniorityLevel))
		default:
			score -= weightSeniorityMiss * diff
			reasons = append(reasons, fmt.Sprintf("%d levels from requested seniority %d", diff, req.SeniorityLevel))
		}
	}

	switch dealer.Status {
	case model.DealerAvailable:
		score += weightAvailable
		reasons = append(reasons, "Currently available")
	case model.DealerDealing:
		score += weightDealing
		reasons = append(reasons, "Currently dealing, needs rotation")
	}

	if !onBreak {
		score += weightNoBreak
		reasons = append(reasons, "Not on break")
	}

	if dealer.PreferredArea != "" &&
		(dealer.PreferredArea == table.Area || (req.Area != "" && dealer.PreferredArea == req.Area)) {
		score += weightAreaMatch
		reasons = append(reasons, fmt.Sprintf("Prefers working %s", dealer.PreferredArea))
	}

	return score, reasons
}
