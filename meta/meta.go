// meta/meta.go
package meta

// MAX_TURNS caps a game; the highest score wins at the cap.
const MAX_TURNS = 300

// NUM_PLAYERS is the number of players in an experiment game.
const NUM_PLAYERS = 2

// MAP_WIDTH and MAP_HEIGHT are the default sandbox map dimensions.
const (
	MAP_WIDTH  = 32
	MAP_HEIGHT = 24
)

// NUM_GAMES is the default number of games per matchup.
const NUM_GAMES = 30
