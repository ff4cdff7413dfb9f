package reward

import "civ/game"

// Item is one itemized reward line.
type Item struct {
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
}

func Total(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Value
	}
	return total
}

// System turns successive player snapshots into reward items. It keeps its own copies of
// the previous and current snapshot.
type System struct {
	spec     Spec
	previous game.PlayerSnapshot
	current  game.PlayerSnapshot
	primed   bool
}

func NewSystem(spec Spec) *System {
	s := &System{spec: DefaultSpec()}
	if spec != nil {
		for k, v := range spec {
			if _, ok := s.spec[k]; ok {
				s.spec[k] = v
			}
		}
	}
	return s
}

// SetValue changes the weight of a reward type. It reports false for unknown types.
func (s *System) SetValue(t Type, value float64) bool {
	setting, ok := s.spec[t]
	if !ok {
		return false
	}
	setting.Value = value
	s.spec[t] = setting
	return true
}

func (s *System) Enable(t Type, enabled bool) bool {
	setting, ok := s.spec[t]
	if !ok {
		return false
	}
	setting.Enabled = enabled
	s.spec[t] = setting
	return true
}

// Value returns the weight of t, or 0 when it is unknown or disabled.
func (s *System) Value(t Type) float64 {
	setting, ok := s.spec[t]
	if !ok || !setting.Enabled {
		return 0
	}
	return setting.Value
}

func (s *System) Spec() Spec { return s.spec.Clone() }

// Reset forgets the baseline so the next call to Calculate only records it.
func (s *System) Reset() {
	s.primed = false
	s.previous = game.PlayerSnapshot{}
	s.current = game.PlayerSnapshot{}
}

// Calculate compares snap with the snapshot from the previous call. The first call after
// construction or Reset only captures the baseline and returns nothing.
func (s *System) Calculate(snap game.PlayerSnapshot) []Item {
	if !s.primed {
		s.current = snap
		s.primed = true
		return nil
	}
	s.previous, s.current = s.current, snap
	prev, cur := s.previous, s.current

	var items []Item
	add := func(t Type, value float64) {
		if s.spec[t].Enabled {
			items = append(items, Item{Type: t, Value: value})
		}
	}
	enabled := func(t Type) bool { return s.spec[t].Enabled }
	weight := func(t Type) float64 { return s.spec[t].Value }

	add(TurnCompleted, weight(TurnCompleted))

	cities := cur.Cities - prev.Cities
	if cities > 0 && enabled(CityFounded) {
		add(CityFounded, weight(CityFounded)*float64(cities))
		if cur.Turn < 50 {
			add(EarlyExpansion, weight(EarlyExpansion)*(1-float64(cur.Turn)/100))
		}
	} else if cities < 0 {
		add(CityLost, weight(CityLost)*float64(-cities))
	}

	if d := cur.Population - prev.Population; d > 0 {
		add(CityGrowth, weight(CityGrowth)*float64(d))
	}
	if d := cur.Buildings - prev.Buildings; d > 0 {
		add(BuildingCompleted, weight(BuildingCompleted)*float64(d))
	}
	if d := cur.Units - prev.Units; d > 0 {
		add(UnitTrained, weight(UnitTrained)*float64(d))
	}
	if cur.MilitaryRatio > 1.2 {
		add(MilitaryAdvantage, weight(MilitaryAdvantage)*(cur.MilitaryRatio-1))
	}
	if d := cur.UnitsLost - prev.UnitsLost; d > 0 {
		add(UnitLost, weight(UnitLost)*float64(d))
	}
	if d := cur.BattlesWon - prev.BattlesWon; d > 0 {
		add(UnitKilled, weight(UnitKilled)*float64(d))
	}
	if d := cur.Technologies - prev.Technologies; d > 0 && enabled(TechResearched) {
		add(TechResearched, weight(TechResearched)*float64(d))
		if cur.TechLead > 0 {
			add(TechLead, weight(TechLead)*float64(cur.TechLead))
		}
	}
	if d := cur.Policies - prev.Policies; d > 0 {
		add(PolicyAdopted, weight(PolicyAdopted)*float64(d))
	}
	if cur.Gold > prev.Gold && enabled(GoldIncome) {
		add(GoldIncome, weight(GoldIncome)*(cur.Gold-prev.Gold))
	} else if cur.Gold < 0 {
		add(NegativeGold, weight(NegativeGold))
	}
	if cur.Score > prev.Score {
		add(ScoreIncrease, weight(ScoreIncrease)*(cur.Score-prev.Score))
	}
	return items
}

// Entry is the serialized form of one reward setting.
type Entry struct {
	Type    Type    `json:"type"`
	Value   float64 `json:"value"`
	Enabled bool    `json:"enabled"`
}

type Serialized struct {
	Rewards  []Entry              `json:"rewards"`
	Previous *game.PlayerSnapshot `json:"previousState,omitempty"`
}

func (s *System) Serialize() Serialized {
	out := Serialized{Rewards: make([]Entry, 0, len(Types))}
	for _, t := range Types {
		setting := s.spec[t]
		out.Rewards = append(out.Rewards, Entry{Type: t, Value: setting.Value, Enabled: setting.Enabled})
	}
	if s.primed {
		snap := s.current
		out.Previous = &snap
	}
	return out
}

// Deserialize restores weights for known types and the stored baseline.
func Deserialize(data Serialized) *System {
	s := NewSystem(nil)
	for _, e := range data.Rewards {
		if _, ok := s.spec[e.Type]; ok {
			s.spec[e.Type] = Setting{Value: e.Value, Enabled: e.Enabled}
		}
	}
	if data.Previous != nil {
		s.current = *data.Previous
		s.primed = true
	}
	return s
}
