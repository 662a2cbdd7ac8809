package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pitboss-backend/internal/model"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected Requirement
	}{
		{
			name: "Full request with seniority, high limit and time",
			text: "I need an H3 high limit dealer for R101 at 6:00",
			expected: Requirement{
				TableNumber:    "R101",
				GameType:       model.GameRoulette,
				SeniorityLevel: 3,
				HighLimit:      true,
				Time:           "18:00",
			},
		},
		{
			name: "Simple table request",
			text: "need dealer for BJ-101",
			expected: Requirement{
				TableNumber: "BJ-101",
				GameType:    model.GameBlackjack,
			},
		},
		{
			name: "Explicit game keyword wins over prefix",
			text: "send a baccarat dealer to R205",
			expected: Requirement{
				TableNumber: "R205",
				GameType:    model.GameBaccarat,
			},
		},
		{
			name: "Level phrasing and work area",
			text: "level 5 dealer for BAC-300 in the high limit room",
			expected: Requirement{
				TableNumber:    "BAC-300",
				GameType:       model.GameBaccarat,
				SeniorityLevel: 5,
				HighLimit:      true,
				Area:           "high limit room",
			},
		},
		{
			name: "Seniority keyword phrasing",
			text: "seniority 4 for CR301",
			expected: Requirement{
				TableNumber:    "CR301",
				GameType:       model.GameCraps,
				SeniorityLevel: 4,
			},
		},
		{
			name: "Explicit meridiem is respected",
			text: "dealer for PG-22 at 9:30 am",
			expected: Requirement{
				TableNumber: "PG-22",
				GameType:    model.GamePaiGow,
				Time:        "09:30",
			},
		},
		{
			name: "Bare hour with meridiem",
			text: "BJ-12 needs coverage at 11pm",
			expected: Requirement{
				TableNumber: "BJ-12",
				GameType:    model.GameBlackjack,
				Time:        "23:00",
			},
		},
		{
			name: "Dealer count and pit",
			text: "2 dealers for PK-410 in the poker room",
			expected: Requirement{
				TableNumber: "PK-410",
				GameType:    model.GamePoker,
				Area:        "poker room",
				DealerCount: 2,
			},
		},
		{
			name: "Unknown prefix leaves game type empty",
			text: "someone to XY-900 please",
			expected: Requirement{
				TableNumber: "XY-900",
			},
		},
		{
			name:     "No recognizable fields",
			text:     "everything is fine",
			expected: Requirement{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCommand(tc.text)
			tc.expected.RawText = tc.text
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRequirementValidate(t *testing.T) {
	assert.ErrorIs(t, ParseCommand("any dealer will do").Validate(), ErrInvalidCommand)
	assert.NoError(t, ParseCommand("dealer for BJ-101").Validate())
}
