package game

import (
	"fmt"
	"slices"
	"sort"
)

// Execute applies one decision for player, or returns an error wrapping ErrIllegal when
// the decision no longer fits the current state.
func (l *Local) Execute(player int, d Decision) error {
	p := l.player(player)
	if p == nil {
		return fmt.Errorf("%w: unknown player %d", ErrIllegal, player)
	}
	switch d.Kind {
	case ResearchDecision:
		return l.setResearch(p, d.Tech)
	case ProductionDecision:
		return l.setProduction(player, d.CityID, d.Item)
	case MoveDecision:
		return l.moveUnit(player, d.UnitID, d.Destination)
	case SettleDecision:
		return l.settle(player, d.UnitID)
	case BuildDecision:
		return l.buildImprovement(player, d.UnitID, d.Improvement)
	case AttackDecision:
		return l.attack(player, d.UnitID, d.TargetID, d.TargetKind)
	}
	return fmt.Errorf("%w: unknown decision kind %v", ErrIllegal, d.Kind)
}

func (l *Local) setResearch(p *playerState, tech string) error {
	if p.researching != "" {
		return fmt.Errorf("%w: already researching %s", ErrIllegal, p.researching)
	}
	if !slices.Contains(l.ResearchOptions(p.id), tech) {
		return fmt.Errorf("%w: cannot research %s", ErrIllegal, tech)
	}
	p.researching = tech
	p.progress = 0
	return nil
}

func (l *Local) setProduction(player, cityID int, item Item) error {
	c := l.city(cityID)
	if c == nil || c.Owner != player {
		return fmt.Errorf("%w: city %d not owned by player %d", ErrIllegal, cityID, player)
	}
	if c.Producing {
		return fmt.Errorf("%w: city %d is busy", ErrIllegal, cityID)
	}
	if !slices.Contains(l.ProductionOptions(c.City), item) {
		return fmt.Errorf("%w: city %d cannot build %s", ErrIllegal, cityID, item.ID)
	}
	if IsNaval(item) && !l.IsCoastal(c.City) {
		return fmt.Errorf("%w: city %d is landlocked", ErrIllegal, cityID)
	}
	c.producing = item
	c.Producing = true
	c.ProductionProgress = 0
	return nil
}

func (l *Local) ownedUnit(player, unitID int) (*unitState, error) {
	u := l.unit(unitID)
	if u == nil || u.Owner != player {
		return nil, fmt.Errorf("%w: unit %d not owned by player %d", ErrIllegal, unitID, player)
	}
	if !u.CanMove {
		return nil, fmt.Errorf("%w: unit %d has no moves left", ErrIllegal, unitID)
	}
	return u, nil
}

func (l *Local) moveUnit(player, unitID int, to Coord) error {
	u, err := l.ownedUnit(player, unitID)
	if err != nil {
		return err
	}
	if !slices.Contains(l.LegalMoves(u.Unit), to) {
		return fmt.Errorf("%w: unit %d cannot reach %v", ErrIllegal, unitID, to)
	}
	u.Location = to
	u.MovementPoints--
	u.CanMove = u.MovementPoints > 0
	l.Map.Reveal(to, 1)
	return nil
}

func (l *Local) settle(player, unitID int) error {
	u, err := l.ownedUnit(player, unitID)
	if err != nil {
		return err
	}
	t := l.Map.At(u.Location)
	if !u.IsSettler() || !t.Terrain.Settleable() || t.City {
		return fmt.Errorf("%w: unit %d cannot settle here", ErrIllegal, unitID)
	}
	count := len(l.Cities(player))
	l.foundCity(player, fmt.Sprintf("Player %d City %d", player, count+1), u.Location)
	l.removeUnit(u.ID)
	return nil
}

func (l *Local) buildImprovement(player, unitID int, improvement string) error {
	u, err := l.ownedUnit(player, unitID)
	if err != nil {
		return err
	}
	t := l.Map.At(u.Location)
	if !u.IsWorker() || t.Improvement != "" || !slices.Contains(t.Terrain.Improvements(), improvement) {
		return fmt.Errorf("%w: unit %d cannot build %s", ErrIllegal, unitID, improvement)
	}
	t.Improvement = improvement
	u.CanMove = false
	u.MovementPoints = 0
	return nil
}

func (l *Local) attack(player, unitID, targetID int, kind TargetKind) error {
	u, err := l.ownedUnit(player, unitID)
	if err != nil {
		return err
	}
	if !l.CanAttack(u.Unit) {
		return fmt.Errorf("%w: unit %d cannot attack", ErrIllegal, unitID)
	}

	var (
		defense  float64
		location Coord
		owner    int
	)
	switch kind {
	case UnitTarget:
		t := l.unit(targetID)
		if t == nil || t.Owner == player || t.Location.Chebyshev(u.Location) > u.attackRg {
			return fmt.Errorf("%w: unit %d out of range", ErrIllegal, targetID)
		}
		defense, location, owner = t.Defense*t.Health/100, t.Location, t.Owner
	case CityTarget:
		c := l.city(targetID)
		if c == nil || c.Owner == player || c.Location.Chebyshev(u.Location) > 1 {
			return fmt.Errorf("%w: city %d out of range", ErrIllegal, targetID)
		}
		defense, location, owner = 2+float64(c.Population), c.Location, c.Owner
	default:
		return fmt.Errorf("%w: unknown target kind %q", ErrIllegal, kind)
	}

	attackerLosses, defenderLosses := l.Rules.DetermineAttackOutcome(
		l.roll(l.Rules.AttackDice(u.Attack*u.Health/100)),
		l.roll(l.Rules.DefendDice(defense)),
	)
	damage := l.Rules.DamagePerLoss()
	u.Health -= float64(attackerLosses) * damage
	u.CanMove = false
	u.MovementPoints = 0
	u.Experience++

	attacker, defender := l.player(player), l.player(owner)
	if kind == UnitTarget {
		t := l.unit(targetID)
		t.Health -= float64(defenderLosses) * damage
		if t.Health <= 0 {
			l.removeUnit(t.ID)
			attacker.battlesWon++
			defender.unitsLost++
		}
	} else {
		c := l.city(targetID)
		c.Health -= float64(defenderLosses) * damage
		if c.Health <= 0 && u.attackRg == 1 {
			c.Owner = player
			c.Health = 50
			c.Producing = false
			c.ProductionProgress = 0
			u.Location = location
			attacker.battlesWon++
		}
	}
	if u.Health <= 0 {
		l.removeUnit(u.ID)
		attacker.unitsLost++
		defender.battlesWon++
	}
	return nil
}

// roll returns n six-sided dice sorted high to low.
func (l *Local) roll(n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = 1 + l.rng.IntN(6)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}
