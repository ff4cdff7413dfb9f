package agent

import (
	"math"
	"slices"

	"civ/game"
)

const (
	starterTurns    = 5
	aggressionRange = 8
	pursueChance    = 0.5
	exploreChance   = 0.7
)

var starterUnits = []string{"settler", "warrior", "archer"}

// basic is the fixed-rule policy. It never learns.
type basic struct{}

func (basic) Kind() Kind { return KindBasic }

func (p basic) decide(o *observation) []game.Decision {
	var out []game.Decision
	b := o.builder()

	if !o.world.Researching(o.player) {
		if options := b.ActionsFor(Research, Context{}); len(options) > 0 {
			out = append(out, options[o.rng.IntN(len(options))])
		}
	}

	cities := o.world.Cities(o.player)
	units := o.world.Units(o.player)

	// Make sure a young civilization gets its first units
	starter := -1
	if o.turnsPlayed < starterTurns && len(cities) > 0 && len(units) < 3 {
		city := cities[0]
		for _, kind := range starterUnits {
			owned := slices.ContainsFunc(units, func(u game.Unit) bool { return u.Kind == kind })
			if !owned && !city.Producing {
				out = append(out, game.Production(city.ID, game.Item{Kind: game.UnitItem, ID: kind}))
				starter = city.ID
				break
			}
		}
	}

	for _, city := range cities {
		if city.Producing || city.ID == starter {
			continue
		}
		if options := b.ActionsFor(Production, Context{City: &city}); len(options) > 0 {
			out = append(out, options[o.rng.IntN(len(options))])
		}
	}

	for _, unit := range units {
		if !unit.CanMove {
			continue
		}
		if d, ok := p.unitAction(o, unit); ok {
			out = append(out, d)
		}
	}
	return out
}

// unitAction walks the rule ladder for one unit: settle, look for a settling site,
// improve, attack, pursue, explore.
func (basic) unitAction(o *observation, unit game.Unit) (game.Decision, bool) {
	w := o.world
	tile, onMap := w.Tile(unit.Location)

	if unit.IsSettler() {
		if onMap && canSettle(tile) {
			return game.Settle(unit.ID), true
		}
		var sites []game.Coord
		for _, c := range w.LegalMoves(unit) {
			t, ok := w.Tile(c)
			if ok && !t.City && (t.Terrain == game.Grassland || t.Terrain == game.Plains) {
				sites = append(sites, c)
			}
		}
		if len(sites) > 0 {
			return game.Move(unit.ID, sites[o.rng.IntN(len(sites))]), true
		}
	}

	if unit.IsWorker() && onMap && tile.Improvement == "" {
		if improvements := tile.Terrain.Improvements(); len(improvements) > 0 {
			return game.Build(unit.ID, improvements[o.rng.IntN(len(improvements))]), true
		}
	}

	if !w.CanAttack(unit) {
		return explore(o, unit)
	}

	if target, ok := nearestEnemyUnit(w.NearbyEnemies(o.player, unit, w.AttackRange(unit)), unit, func(t game.Target) bool {
		return t.Location.Chebyshev(unit.Location) <= w.AttackRange(unit)
	}); ok {
		return game.Attack(unit.ID, target.ID, game.UnitTarget), true
	}

	if o.rng.Float64() < pursueChance {
		target, ok := nearestEnemyUnit(w.NearbyEnemies(o.player, unit, aggressionRange), unit, func(t game.Target) bool {
			return t.Location.Distance(unit.Location) < aggressionRange
		})
		moves := w.LegalMoves(unit)
		if ok && len(moves) > 0 {
			best, bestDistance := moves[0], math.Inf(1)
			for _, m := range moves {
				if d := m.Distance(target.Location); d < bestDistance {
					best, bestDistance = m, d
				}
			}
			return game.Move(unit.ID, best), true
		}
	}
	return explore(o, unit)
}

// explore usually steps onto an unexplored neighbour, or any legal one if none is left.
func explore(o *observation, unit game.Unit) (game.Decision, bool) {
	if o.rng.Float64() >= exploreChance {
		return game.Decision{}, false
	}
	moves := o.world.LegalMoves(unit)
	if len(moves) == 0 {
		return game.Decision{}, false
	}
	var unexplored []game.Coord
	for _, c := range moves {
		if t, ok := o.world.Tile(c); ok && !t.Explored {
			unexplored = append(unexplored, c)
		}
	}
	if len(unexplored) > 0 {
		return game.Move(unit.ID, unexplored[o.rng.IntN(len(unexplored))]), true
	}
	return game.Move(unit.ID, moves[o.rng.IntN(len(moves))]), true
}

func nearestEnemyUnit(targets []game.Target, unit game.Unit, keep func(game.Target) bool) (game.Target, bool) {
	var best game.Target
	found, dist := false, math.Inf(1)
	for _, t := range targets {
		if t.Kind != game.UnitTarget || !keep(t) {
			continue
		}
		if d := t.Location.Distance(unit.Location); d < dist {
			best, dist, found = t, d, true
		}
	}
	return best, found
}

func (basic) endTurn(*observation, float64)      {}
func (basic) gameOver(*observation, bool)        {}
func (basic) newGame()                           {}
func (basic) hyperparameters() Hyperparameters   { return Hyperparameters{} }
func (basic) setHyperparameters(Hyperparameters) {}
