package game

import "errors"

// ErrIllegal is returned by a Commander when a decision can no longer be executed
// against the current world state.
var ErrIllegal = errors.New("illegal decision")

// PlayerSnapshot is a read-only copy of the quantities a player's agent observes.
type PlayerSnapshot struct {
	Turn             int     `json:"turn"`
	Cities           int     `json:"cities"`
	Population       int     `json:"population"`
	Buildings        int     `json:"buildings"`
	Units            int     `json:"units"`
	UnitsLost        int     `json:"unitsLost"`
	BattlesWon       int     `json:"battlesWon"`
	Technologies     int     `json:"technologies"`
	Policies         int     `json:"policies"`
	Gold             float64 `json:"gold"`
	Score            float64 `json:"score"`
	MilitaryRatio    float64 `json:"militaryRatio"`
	TechLead         int     `json:"techLead"`
	Science          float64 `json:"science"`
	Culture          float64 `json:"culture"`
	ResearchProgress float64 `json:"researchProgress"`
}

// World exposes the queries an agent needs. Implementations must return slices in a
// stable order for identical state.
type World interface {
	Snapshot(player int) (PlayerSnapshot, bool)
	Cities(player int) []City
	Units(player int) []Unit
	Researching(player int) bool
	ResearchOptions(player int) []string
	ProductionOptions(city City) []Item
	IsCoastal(city City) bool
	LegalMoves(unit Unit) []Coord
	Tile(c Coord) (Tile, bool)
	// NearbyEnemies returns enemy units and cities within Chebyshev distance radius.
	NearbyEnemies(player int, unit Unit, radius int) []Target
	NearbyFriendlies(player int, unit Unit, radius int) int
	CanAttack(unit Unit) bool
	AttackRange(unit Unit) int
	Size() (width, height int)
}

// Commander executes one decision for a player. Results are only observable through
// later queries.
type Commander interface {
	Execute(player int, d Decision) error
}

// Sim is a World that can also be driven turn by turn.
type Sim interface {
	World
	Commander
	Players() []int
	// Researched lists a player's completed technologies in completion order.
	Researched(player int) []string
	EndTurn(player int)
	AdvanceTurn()
	Turn() int
	// Winner returns the winning player, or -1 while the game is undecided.
	Winner() int
	Score(player int) float64
}
