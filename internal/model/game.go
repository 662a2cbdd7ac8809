package model

// GameType identifies the game dealt at a table.
type GameType string

const (
	GameBlackjack GameType = "blackjack"
	GameRoulette  GameType = "roulette"
	GameBaccarat  GameType = "baccarat"
	GamePoker     GameType = "poker"
	GameCraps     GameType = "craps"
	GamePaiGow    GameType = "pai_gow"
)

// DisplayName returns the human-readable form used in reasons and alerts.
func (g GameType) DisplayName() string {
	switch g {
	case GameBlackjack:
		return "Blackjack"
	case GameRoulette:
		return "Roulette"
	case GameBaccarat:
		return "Baccarat"
	case GamePoker:
		return "Poker"
	case GameCraps:
		return "Craps"
	case GamePaiGow:
		return "Pai Gow"
	}
	return string(g)
}
