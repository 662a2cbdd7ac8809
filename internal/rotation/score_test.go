package rotation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/parse"
)

func TestScoreDealer(t *testing.T) {
	blackjack := model.GameTable{TableNumber: "BJ-101", GameType: model.GameBlackjack, MinBet: 25}
	highLimit := model.GameTable{TableNumber: "BAC-1", GameType: model.GameBaccarat, MinBet: 500, Area: "high limit room"}

	certified := func(seniority int, status model.DealerStatus) model.Dealer {
		return model.Dealer{
			Name:      "d",
			Status:    status,
			Seniority: seniority,
			Certifications: []model.Certification{
				{GameType: blackjack.GameType, Active: true},
				{GameType: highLimit.GameType, Active: true},
			},
		}
	}

	testCases := []struct {
		name          string
		dealer        model.Dealer
		table         model.GameTable
		req           parse.Requirement
		onBreak       bool
		expectedScore int
		expectReason  string
	}{
		{
			name:          "Certified available dealer on a standard table",
			dealer:        certified(5, model.DealerAvailable),
			table:         blackjack,
			expectedScore: 50 + 25 + 10,
			expectReason:  "Certified for Blackjack",
		},
		{
			name:          "Uncertified dealer takes the penalty but is still scored",
			dealer:        model.Dealer{Status: model.DealerAvailable, Seniority: 2},
			table:         blackjack,
			expectedScore: -100 + 25 + 10,
			expectReason:  "Not certified for Blackjack",
		},
		{
			name:          "Senior dealer on a high limit table",
			dealer:        certified(5, model.DealerAvailable),
			table:         highLimit,
			expectedScore: 50 + 30 + 25 + 10,
			expectReason:  "Senior dealer suited for high limit",
		},
		{
			name:          "Mid seniority on a high limit table",
			dealer:        certified(3, model.DealerAvailable),
			table:         highLimit,
			expectedScore: 50 + 15 + 25 + 10,
		},
		{
			name:          "Junior dealer penalized on a high limit table",
			dealer:        certified(1, model.DealerAvailable),
			table:         highLimit,
			expectedScore: 50 - 20 + 25 + 10,
		},
		{
			name:          "Exact seniority request",
			dealer:        certified(3, model.DealerAvailable),
			table:         blackjack,
			req:           parse.Requirement{SeniorityLevel: 3},
			expectedScore: 50 + 40 + 25 + 10,
		},
		{
			name:          "Off by one seniority request",
			dealer:        certified(4, model.DealerAvailable),
			table:         blackjack,
			req:           parse.Requirement{SeniorityLevel: 3},
			expectedScore: 50 + 20 + 25 + 10,
		},
		{
			name:          "Distant seniority request scales the penalty",
			dealer:        certified(6, model.DealerAvailable),
			table:         blackjack,
			req:           parse.Requirement{SeniorityLevel: 3},
			expectedScore: 50 - 30 + 25 + 10,
		},
		{
			name:          "Dealing dealer costs a rotation step",
			dealer:        certified(5, model.DealerDealing),
			table:         blackjack,
			expectedScore: 50 - 10 + 10,
		},
		{
			name:          "Open break drops the no-break bonus",
			dealer:        certified(5, model.DealerAvailable),
			table:         blackjack,
			onBreak:       true,
			expectedScore: 50 + 25,
		},
		{
			name: "Preferred area match",
			dealer: model.Dealer{
				Status:        model.DealerAvailable,
				Seniority:     5,
				PreferredArea: "high limit room",
				Certifications: []model.Certification{
					{GameType: model.GameBaccarat, Active: true},
				},
			},
			table:         highLimit,
			expectedScore: 50 + 30 + 25 + 10 + 15,
			expectReason:  "Prefers working high limit room",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score, reasons := ScoreDealer(tc.dealer, tc.table, tc.req, tc.onBreak)
			assert.Equal(t, tc.expectedScore, score)
			if tc.expectReason != "" {
				assert.Contains(t, reasons, tc.expectReason)
			}
		})
	}
}

func TestFindQualified(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks a certified available dealer on top", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "BJ-101", model.GameBlackjack, 25, "main floor")
		seedDealer(t, s, "Ana", model.DealerAvailable, 5, "", model.GameBlackjack)
		seedDealer(t, s, "Bo", model.DealerAvailable, 2, "")

		candidates, table, err := scorer.FindQualified(ctx, parse.ParseCommand("need dealer for BJ-101"))
		require.NoError(t, err)
		assert.Equal(t, "BJ-101", table.TableNumber)
		require.Len(t, candidates, 2)
		assert.Equal(t, "Ana", candidates[0].Dealer.Name)
		assert.GreaterOrEqual(t, candidates[0].Score, 85)
		assert.Contains(t, candidates[0].Reasons, "Certified for Blackjack")
	})

	t.Run("uncertified dealer is ranked, not dropped", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "BAC-300", model.GameBaccarat, 50, "")
		seedDealer(t, s, "Cy", model.DealerAvailable, 4, "")

		candidates, _, err := scorer.FindQualified(ctx, parse.ParseCommand("dealer for BAC-300"))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "Cy", candidates[0].Dealer.Name)
		assert.Negative(t, candidates[0].Score)
		assert.Contains(t, candidates[0].Reasons, "Not certified for Baccarat")
	})

	t.Run("dealers off the floor are excluded from the pool", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "BJ-7", model.GameBlackjack, 25, "")
		seedDealer(t, s, "In", model.DealerAvailable, 3, "", model.GameBlackjack)
		seedDealer(t, s, "Out", model.DealerSentHome, 5, "", model.GameBlackjack)
		seedDealer(t, s, "Rest", model.DealerOnBreak, 5, "", model.GameBlackjack)

		candidates, _, err := scorer.FindQualified(ctx, parse.ParseCommand("dealer for BJ-7"))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "In", candidates[0].Dealer.Name)
	})

	t.Run("unknown table", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)

		_, _, err := scorer.FindQualified(ctx, parse.ParseCommand("dealer for BJ-999"))
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("craps tables are never auto-staffed", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "CR301", model.GameCraps, 10, "")
		seedDealer(t, s, "Di", model.DealerAvailable, 5, "", model.GameCraps)

		_, _, err := scorer.FindQualified(ctx, parse.ParseCommand("dealer for CR301"))
		assert.ErrorIs(t, err, ErrUnsupportedGameType)
	})

	t.Run("empty pool is an error, not an empty list", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "BJ-8", model.GameBlackjack, 25, "")
		seedDealer(t, s, "Gone", model.DealerSentHome, 5, "", model.GameBlackjack)

		_, _, err := scorer.FindQualified(ctx, parse.ParseCommand("dealer for BJ-8"))
		assert.ErrorIs(t, err, ErrNoQualifiedCandidates)
	})

	t.Run("identical inputs produce identical orderings", func(t *testing.T) {
		s := newTestStore(t)
		scorer := NewScorer(s)
		seedTable(t, s, "R101", model.GameRoulette, 25, "")
		for i := 0; i < 5; i++ {
			seedDealer(t, s, fmt.Sprintf("Tw%d", i), model.DealerAvailable, 3, "", model.GameRoulette)
		}

		req := parse.ParseCommand("dealer for R101")
		first, _, err := scorer.FindQualified(ctx, req)
		require.NoError(t, err)
		second, _, err := scorer.FindQualified(ctx, req)
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Dealer.ID, second[i].Dealer.ID)
			assert.Equal(t, first[i].Score, second[i].Score)
		}
	})
}
