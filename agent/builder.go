package agent

import (
	"slices"

	"civ/game"
)

// Builder enumerates legal actions. The order of the result only depends on the world
// state, since action positions double as network output columns.
type Builder struct {
	World  game.World
	Player int
}

// ActionsFor returns the legal actions of a category. It returns nil when nothing is
// legal or the context lacks the entity the category needs.
func (b Builder) ActionsFor(c Category, ctx Context) []game.Decision {
	if b.World == nil {
		return nil
	}
	switch c {
	case Research:
		return b.research()
	case Production:
		if ctx.City != nil {
			return b.production(*ctx.City)
		}
	case UnitAction:
		if ctx.Unit != nil {
			return b.unitActions(*ctx.Unit)
		}
	}
	return nil
}

func (b Builder) research() []game.Decision {
	var out []game.Decision
	for _, tech := range b.World.ResearchOptions(b.Player) {
		out = append(out, game.Research(tech))
	}
	return out
}

func (b Builder) production(city game.City) []game.Decision {
	coastal := b.World.IsCoastal(city)
	var out []game.Decision
	for _, item := range b.World.ProductionOptions(city) {
		if game.IsNaval(item) && !coastal {
			continue
		}
		out = append(out, game.Production(city.ID, item))
	}
	return out
}

func (b Builder) unitActions(unit game.Unit) []game.Decision {
	var out []game.Decision
	tile, onMap := b.World.Tile(unit.Location)

	if unit.IsSettler() && onMap && canSettle(tile) {
		out = append(out, game.Settle(unit.ID))
	}
	if unit.IsWorker() && onMap && tile.Improvement == "" {
		for _, improvement := range tile.Terrain.Improvements() {
			out = append(out, game.Build(unit.ID, improvement))
		}
	}
	if b.World.CanAttack(unit) {
		for _, t := range b.attackTargets(unit) {
			out = append(out, game.Attack(unit.ID, t.ID, t.Kind))
		}
	}
	for _, dest := range b.World.LegalMoves(unit) {
		out = append(out, game.Move(unit.ID, dest))
	}
	return out
}

// attackTargets returns enemy units within the unit's range and enemy cities next to it,
// units first and each kind by id.
func (b Builder) attackTargets(unit game.Unit) []game.Target {
	rng := max(b.World.AttackRange(unit), 1)
	var targets []game.Target
	for _, t := range b.World.NearbyEnemies(b.Player, unit, rng) {
		d := t.Location.Chebyshev(unit.Location)
		if (t.Kind == game.UnitTarget && d <= rng) || (t.Kind == game.CityTarget && d <= 1) {
			targets = append(targets, t)
		}
	}
	slices.SortStableFunc(targets, func(x, y game.Target) int {
		if x.Kind != y.Kind {
			if x.Kind == game.UnitTarget {
				return -1
			}
			return 1
		}
		return x.ID - y.ID
	})
	return targets
}

func canSettle(t game.Tile) bool {
	return t.Terrain.Settleable() && !t.City
}

func canImprove(t game.Tile) bool {
	return t.Improvement == "" && len(t.Terrain.Improvements()) > 0
}
