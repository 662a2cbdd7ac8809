// Package parse turns free-text staffing requests into structured
// requirements. Parsing is pure: no store lookups, no side effects,
// and no field is required for a parse to succeed.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pitboss-backend/internal/model"
)

var (
	tableRe     = regexp.MustCompile(`\b([A-Za-z]{1,3}-?\d{2,4})\b`)
	seniorityRe = regexp.MustCompile(`(?i)\b(?:[HL](\d)|level\s+(\d+)|seniority\s+(\d+))\b`)
	clockRe     = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourRe      = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
	countRe     = regexp.MustCompile(`(?i)\b(\d+)\s+dealers?\b`)
	highLimitRe = regexp.MustCompile(`(?i)\bhigh[\s-]?limit\b`)
)

// gameByPrefix maps table-number letter prefixes to game types.
var gameByPrefix = map[string]model.GameType{
	"BJ":  model.GameBlackjack,
	"R":   model.GameRoulette,
	"RO":  model.GameRoulette,
	"BAC": model.GameBaccarat,
	"P":   model.GamePoker,
	"PK":  model.GamePoker,
	"CR":  model.GameCraps,
	"PG":  model.GamePaiGow,
}

// gameKeywords are explicit game-type words; an explicit keyword wins
// over the prefix-derived type.
var gameKeywords = []struct {
	word string
	game model.GameType
}{
	{"blackjack", model.GameBlackjack},
	{"roulette", model.GameRoulette},
	{"baccarat", model.GameBaccarat},
	{"poker", model.GamePoker},
	{"craps", model.GameCraps},
	{"pai gow", model.GamePaiGow},
}

// areaVocabulary is the fixed set of recognized work-area names.
var areaVocabulary = []string{
	"high limit room",
	"main floor",
	"north pit",
	"south pit",
	"poker room",
}

// ErrInvalidCommand is returned by Validate when a command names no
// table; every downstream consumer needs a target table.
var ErrInvalidCommand = errors.New("command does not identify a table")

// Requirement is the structured form of a staffing request.
type Requirement struct {
	TableNumber    string         `json:"table_number"`
	GameType       model.GameType `json:"game_type,omitempty"`
	SeniorityLevel int            `json:"seniority_level,omitempty"`
	HighLimit      bool           `json:"high_limit"`
	Time           string         `json:"time,omitempty"` // "HH:MM", 24-hour
	Area           string         `json:"area,omitempty"`
	DealerCount    int            `json:"dealer_count,omitempty"`
	RawText        string         `json:"raw_text,omitempty"`
}

// Validate reports whether the requirement can drive an assignment.
func (r Requirement) Validate() error {
	if r.TableNumber == "" {
		return ErrInvalidCommand
	}
	return nil
}

// ParseCommand extracts every recognizable field from a free-text
// staffing request. Fields are extracted independently; anything not
// found is left at its zero value.
func ParseCommand(text string) Requirement {
	req := Requirement{RawText: text}
	lower := strings.ToLower(text)

	if m := tableRe.FindString(text); m != "" {
		req.TableNumber = strings.ToUpper(m)
		req.GameType = gameFromPrefix(req.TableNumber)
	}

	// Explicit game keyword overrides the prefix-derived type.
	for _, kw := range gameKeywords {
		if strings.Contains(lower, kw.word) {
			req.GameType = kw.game
			break
		}
	}

	req.HighLimit = highLimitRe.MatchString(text)

	if m := seniorityRe.FindStringSubmatch(text); m != nil {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if n, err := strconv.Atoi(group); err == nil {
				req.SeniorityLevel = n
				break
			}
		}
	}

	req.Time = parseTimeOfDay(text)

	for _, area := range areaVocabulary {
		if strings.Contains(lower, area) {
			req.Area = area
			break
		}
	}

	if m := countRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			req.DealerCount = n
		}
	}

	return req
}

// parseTimeOfDay extracts a clock time. A bare hour below 12 with no
// meridiem is read as PM, matching casino operating hours ("6:00"
// means 18:00 on the floor).
func parseTimeOfDay(text string) string {
	var hour, minute int
	var meridiem string

	if m := clockRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		meridiem = strings.ToLower(m[3])
	} else if m := hourRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		meridiem = strings.ToLower(m[2])
	} else {
		return ""
	}

	if hour > 23 || minute > 59 {
		return ""
	}

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	default:
		if hour < 12 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// gameFromPrefix infers the game type from the table number's letter
// prefix, e.g. BJ-101 is a blackjack table.
func gameFromPrefix(tableNumber string) model.GameType {
	letters := tableNumber
	for i, r := range tableNumber {
		if r >= '0' && r <= '9' || r == '-' {
			letters = tableNumber[:i]
			break
		}
	}
	if game, ok := gameByPrefix[letters]; ok {
		return game
	}
	return ""
}
