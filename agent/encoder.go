package agent

import (
	"fmt"

	"civ/game"
	"civ/utils"
)

const (
	playerFeatures = 7
	goldBucket     = 50
	turnBucket     = 10
	// proximity is the radius used to count nearby units.
	proximity = 3
)

// StateKey is the discrete state used by the Q table. Continuous values are bucketed so
// nearby states share entries.
type StateKey struct {
	Cities   int      `json:"cities"`
	Units    int      `json:"units"`
	Tech     int      `json:"tech"`
	Gold     int      `json:"gold"`
	Turn     int      `json:"turn"`
	Category Category `json:"category"`
	Entity   int      `json:"entity,omitempty"`
}

func (k StateKey) String() string {
	s := fmt.Sprintf("cities=%d units=%d tech=%d gold=%d turn=%d|%s", k.Cities, k.Units, k.Tech, k.Gold, k.Turn, k.Category)
	if k.Entity != 0 {
		s += fmt.Sprintf("#%d", k.Entity)
	}
	return s
}

// Encoder turns a player snapshot plus a decision context into a StateKey or a feature
// vector. Both are pure functions of the snapshot and the world.
type Encoder struct {
	World  game.World
	Player int
}

func (e Encoder) Key(snap game.PlayerSnapshot, c Category, ctx Context) StateKey {
	return StateKey{
		Cities:   snap.Cities,
		Units:    snap.Units,
		Tech:     snap.Technologies,
		Gold:     utils.Bucket(snap.Gold, goldBucket),
		Turn:     utils.Bucket(snap.Turn, turnBucket),
		Category: c,
		Entity:   ctx.entity(),
	}
}

// Vector returns exactly c.Arity() features in [0, 1], zero padded when the context is
// missing.
func (e Encoder) Vector(snap game.PlayerSnapshot, c Category, ctx Context) []float64 {
	features := []float64{
		float64(snap.Cities) / 10,
		float64(snap.Units) / 20,
		float64(snap.Technologies) / 20,
		snap.Gold / 500,
		float64(snap.Turn) / 100,
		snap.Science / 50,
		snap.Culture / 100,
	}

	var extra []float64
	switch c {
	case Research:
		extra = []float64{
			float64(snap.Technologies) / 20,
			snap.ResearchProgress / 100,
			snap.Science / 50,
		}
	case Production:
		if city := ctx.City; city != nil {
			extra = []float64{
				float64(city.Population) / 10,
				city.Food / 10,
				city.Production / 10,
				city.Gold / 10,
				city.Science / 5,
				float64(len(city.Buildings)) / 10,
				city.ProductionProgress / 100,
				city.Health / 100,
			}
		}
	case UnitAction:
		if unit := ctx.Unit; unit != nil && e.World != nil {
			extra = e.unitFeatures(*unit)
		}
	}
	features = append(features, utils.Fit(extra, c.contextFeatures())...)
	for i, v := range features {
		features[i] = utils.Clamp(v, 0, 1)
	}
	return features
}

func (e Encoder) unitFeatures(u game.Unit) []float64 {
	width, height := e.World.Size()
	tile, onMap := e.World.Tile(u.Location)

	enemies := 0
	for _, t := range e.World.NearbyEnemies(e.Player, u, proximity) {
		if t.Kind == game.UnitTarget {
			enemies++
		}
	}
	return []float64{
		u.Health / 100,
		float64(u.MovementPoints) / 4,
		u.Experience / 20,
		u.Attack / 20,
		u.Defense / 20,
		float64(u.Location.X) / float64(max(width, 1)),
		float64(u.Location.Y) / float64(max(height, 1)),
		flag(e.World.CanAttack(u)),
		flag(u.CanMove),
		flag(u.IsSettler() && onMap && canSettle(tile)),
		flag(u.IsWorker() && onMap && canImprove(tile)),
		float64(enemies) / 5,
		float64(e.World.NearbyFriendlies(e.Player, u, proximity)) / 5,
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
