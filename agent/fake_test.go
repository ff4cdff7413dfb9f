package agent

import (
	"math/rand/v2"

	"civ/game"
)

// fakeWorld is a hand-configured world for policy tests.
type fakeWorld struct {
	snap        game.PlayerSnapshot
	researching bool
	research    []string
	cities      []game.City
	units       []game.Unit
	production  map[int][]game.Item
	coastal     map[int]bool
	moves       map[int][]game.Coord
	tiles       map[game.Coord]game.Tile
	enemies     []game.Target
	friendlies  int
	attackers   map[int]int // unit id -> attack range
	executed    []game.Decision
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		production: make(map[int][]game.Item),
		coastal:    make(map[int]bool),
		moves:      make(map[int][]game.Coord),
		tiles:      make(map[game.Coord]game.Tile),
		attackers:  make(map[int]int),
	}
}

func (w *fakeWorld) Snapshot(player int) (game.PlayerSnapshot, bool) {
	if player != 1 {
		return game.PlayerSnapshot{}, false
	}
	return w.snap, true
}

func (w *fakeWorld) Cities(int) []game.City                    { return w.cities }
func (w *fakeWorld) Units(int) []game.Unit                     { return w.units }
func (w *fakeWorld) Researching(int) bool                      { return w.researching }
func (w *fakeWorld) ResearchOptions(int) []string              { return w.research }
func (w *fakeWorld) ProductionOptions(c game.City) []game.Item { return w.production[c.ID] }
func (w *fakeWorld) IsCoastal(c game.City) bool                { return w.coastal[c.ID] }
func (w *fakeWorld) LegalMoves(u game.Unit) []game.Coord       { return w.moves[u.ID] }
func (w *fakeWorld) Size() (int, int)                          { return 10, 10 }

func (w *fakeWorld) Tile(c game.Coord) (game.Tile, bool) {
	t, ok := w.tiles[c]
	return t, ok
}

func (w *fakeWorld) NearbyEnemies(_ int, u game.Unit, radius int) []game.Target {
	var out []game.Target
	for _, t := range w.enemies {
		if t.Location.Chebyshev(u.Location) <= radius {
			out = append(out, t)
		}
	}
	return out
}

func (w *fakeWorld) NearbyFriendlies(int, game.Unit, int) int { return w.friendlies }

func (w *fakeWorld) CanAttack(u game.Unit) bool {
	_, ok := w.attackers[u.ID]
	return ok
}

func (w *fakeWorld) AttackRange(u game.Unit) int { return w.attackers[u.ID] }

func (w *fakeWorld) Execute(_ int, d game.Decision) error {
	w.executed = append(w.executed, d)
	return nil
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func testObservation(w *fakeWorld) *observation {
	return &observation{
		world:  w,
		player: 1,
		snap:   w.snap,
		rng:    testRand(),
		stats:  &Stats{},
	}
}
