package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

type cityState struct {
	City
	producing Item
	foodStore float64
}

type unitState struct {
	Unit
	naval    bool
	civilian bool
	maxMoves int
	attackRg int
}

type playerState struct {
	id          int
	gold        float64
	science     float64
	culture     float64
	researched  []string
	researching string
	progress    float64
	policies    int
	unitsLost   int
	battlesWon  int
}

// Local is a small in-process sandbox world used to drive agents end to end. It keeps
// cities and units in id order so every query is deterministic.
type Local struct {
	Map     *Map
	Rules   Rules
	players []*playerState
	cities  []*cityState
	units   []*unitState
	nextID  int
	turn    int
	rng     *rand.Rand
}

// NewLocal places a capital, a settler and a warrior for each of numPlayers players.
// Players are numbered from 1.
func NewLocal(m *Map, rules Rules, numPlayers int, rng *rand.Rand) *Local {
	if numPlayers < 2 {
		panic("need at least two players")
	}
	l := &Local{Map: m, Rules: rules, nextID: 1, rng: rng}

	starts := m.StartingPositions(numPlayers, rng)
	if len(starts) < numPlayers {
		panic(fmt.Sprintf("map has room for %d of %d players", len(starts), numPlayers))
	}
	for i := 0; i < numPlayers; i++ {
		p := &playerState{id: i + 1, gold: 20}
		l.players = append(l.players, p)
		l.foundCity(p.id, fmt.Sprintf("Player %d Capital", p.id), starts[i])
		l.spawnUnit(p.id, "settler", starts[i])
		l.spawnUnit(p.id, "warrior", starts[i])
	}
	return l
}

func (l *Local) Players() []int {
	ids := make([]int, len(l.players))
	for i, p := range l.players {
		ids[i] = p.id
	}
	return ids
}

func (l *Local) Turn() int { return l.turn }

func (l *Local) Size() (int, int) { return l.Map.Width, l.Map.Height }

func (l *Local) player(id int) *playerState {
	for _, p := range l.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (l *Local) Snapshot(player int) (PlayerSnapshot, bool) {
	p := l.player(player)
	if p == nil {
		return PlayerSnapshot{}, false
	}

	snap := PlayerSnapshot{
		Turn:         l.turn,
		UnitsLost:    p.unitsLost,
		BattlesWon:   p.battlesWon,
		Technologies: len(p.researched),
		Policies:     p.policies,
		Gold:         p.gold,
		Score:        l.Score(player),
		Science:      p.science,
		Culture:      p.culture,
	}
	if tech, ok := LookupTech(p.researching); ok {
		snap.ResearchProgress = 100 * p.progress / tech.Cost
	}
	for _, c := range l.cities {
		if c.Owner == player {
			snap.Cities++
			snap.Population += c.Population
			snap.Buildings += len(c.Buildings)
		}
	}
	for _, u := range l.units {
		if u.Owner == player {
			snap.Units++
		}
	}
	snap.MilitaryRatio, snap.TechLead = l.relativeStrength(player)
	return snap, true
}

func (l *Local) Cities(player int) []City {
	var out []City
	for _, c := range l.cities {
		if c.Owner == player {
			view := c.City
			view.Buildings = slices.Clone(c.Buildings)
			out = append(out, view)
		}
	}
	return out
}

func (l *Local) Units(player int) []Unit {
	var out []Unit
	for _, u := range l.units {
		if u.Owner == player {
			out = append(out, u.Unit)
		}
	}
	return out
}

func (l *Local) Researching(player int) bool {
	p := l.player(player)
	return p != nil && p.researching != ""
}

// Researched lists the player's completed technologies in completion order.
func (l *Local) Researched(player int) []string {
	p := l.player(player)
	if p == nil {
		return nil
	}
	return slices.Clone(p.researched)
}

func (l *Local) ResearchOptions(player int) []string {
	p := l.player(player)
	if p == nil {
		return nil
	}
	var out []string
	for _, t := range Techs {
		if slices.Contains(p.researched, t.ID) {
			continue
		}
		ready := true
		for _, req := range t.Requires {
			if !slices.Contains(p.researched, req) {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, t.ID)
		}
	}
	return out
}

func (l *Local) ProductionOptions(city City) []Item {
	p := l.player(city.Owner)
	if p == nil {
		return nil
	}
	known := func(tech string) bool {
		return tech == "" || slices.Contains(p.researched, tech)
	}
	var out []Item
	for _, b := range Buildings {
		if known(b.Requires) && !slices.Contains(city.Buildings, b.ID) {
			out = append(out, Item{Kind: BuildingItem, ID: b.ID})
		}
	}
	for _, u := range UnitTypes {
		if known(u.Requires) {
			out = append(out, Item{Kind: UnitItem, ID: u.ID})
		}
	}
	return out
}

func (l *Local) IsCoastal(city City) bool {
	for _, n := range l.Map.Surrounding(city.Location) {
		if l.Map.At(n).Terrain == Ocean {
			return true
		}
	}
	return false
}

func (l *Local) LegalMoves(unit Unit) []Coord {
	u := l.unit(unit.ID)
	if u == nil || !u.CanMove {
		return nil
	}
	var out []Coord
	for _, n := range l.Map.Adjacent(u.Location) {
		if l.passable(u, n) {
			out = append(out, n)
		}
	}
	return out
}

func (l *Local) passable(u *unitState, c Coord) bool {
	t := l.Map.At(c)
	if t == nil {
		return false
	}
	if u.naval != (t.Terrain == Ocean) || t.Terrain == Mountains {
		return false
	}
	for _, o := range l.units {
		if o.Location == c && o.Owner != u.Owner {
			return false
		}
	}
	if city := l.cityAt(c); city != nil && city.Owner != u.Owner {
		return false
	}
	return true
}

func (l *Local) Tile(c Coord) (Tile, bool) {
	t := l.Map.At(c)
	if t == nil {
		return Tile{}, false
	}
	return *t, true
}

func (l *Local) NearbyEnemies(player int, unit Unit, radius int) []Target {
	var out []Target
	for _, u := range l.units {
		if u.Owner != player && u.Location.Chebyshev(unit.Location) <= radius {
			out = append(out, Target{ID: u.ID, Kind: UnitTarget, Owner: u.Owner, Location: u.Location})
		}
	}
	for _, c := range l.cities {
		if c.Owner != player && c.Location.Chebyshev(unit.Location) <= radius {
			out = append(out, Target{ID: c.ID, Kind: CityTarget, Owner: c.Owner, Location: c.Location})
		}
	}
	return out
}

func (l *Local) NearbyFriendlies(player int, unit Unit, radius int) int {
	count := 0
	for _, u := range l.units {
		if u.Owner == player && u.ID != unit.ID && u.Location.Chebyshev(unit.Location) <= radius {
			count++
		}
	}
	return count
}

func (l *Local) CanAttack(unit Unit) bool {
	u := l.unit(unit.ID)
	return u != nil && !u.civilian && u.Attack > 0 && u.CanMove
}

func (l *Local) AttackRange(unit Unit) int {
	u := l.unit(unit.ID)
	if u == nil {
		return 0
	}
	return u.attackRg
}

func (l *Local) unit(id int) *unitState {
	for _, u := range l.units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (l *Local) city(id int) *cityState {
	for _, c := range l.cities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (l *Local) cityAt(c Coord) *cityState {
	for _, city := range l.cities {
		if city.Location == c {
			return city
		}
	}
	return nil
}

func (l *Local) foundCity(owner int, name string, at Coord) *cityState {
	c := &cityState{City: City{
		ID:         l.nextID,
		Owner:      owner,
		Name:       name,
		Location:   at,
		Population: 1,
		Health:     100,
	}}
	l.nextID++
	l.cities = append(l.cities, c)
	l.Map.At(at).City = true
	l.Map.Reveal(at, 2)
	return c
}

func (l *Local) spawnUnit(owner int, kind string, at Coord) *unitState {
	ut, ok := LookupUnit(kind)
	if !ok {
		panic(fmt.Sprintf("unknown unit type %q", kind))
	}
	u := &unitState{
		Unit: Unit{
			ID:             l.nextID,
			Owner:          owner,
			Kind:           kind,
			Location:       at,
			Health:         100,
			MovementPoints: ut.Moves,
			Attack:         ut.Attack,
			Defense:        ut.Defense,
			CanMove:        true,
		},
		naval:    ut.Naval,
		civilian: ut.Civilian,
		maxMoves: ut.Moves,
		attackRg: ut.Range,
	}
	l.nextID++
	l.units = append(l.units, u)
	l.Map.Reveal(at, 1)
	return u
}

func (l *Local) removeUnit(id int) {
	l.units = slices.DeleteFunc(l.units, func(u *unitState) bool { return u.ID == id })
}
