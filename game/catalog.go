package game

// Tech is a node of the sandbox technology tree.
type Tech struct {
	ID       string
	Cost     float64
	Requires []string
}

// UnitType holds the base stats of a trainable unit.
type UnitType struct {
	ID       string
	Cost     float64
	Attack   float64
	Defense  float64
	Moves    int
	Range    int
	Naval    bool
	Civilian bool
	Requires string
}

type BuildingType struct {
	ID       string
	Cost     float64
	Requires string
}

var Techs = []Tech{
	{ID: "agriculture", Cost: 20},
	{ID: "pottery", Cost: 25, Requires: []string{"agriculture"}},
	{ID: "bronze_working", Cost: 30},
	{ID: "archery", Cost: 30},
	{ID: "writing", Cost: 40, Requires: []string{"pottery"}},
	{ID: "horseback_riding", Cost: 40, Requires: []string{"agriculture"}},
	{ID: "masonry", Cost: 35},
	{ID: "sailing", Cost: 45, Requires: []string{"pottery"}},
	{ID: "iron_working", Cost: 60, Requires: []string{"bronze_working"}},
	{ID: "mathematics", Cost: 70, Requires: []string{"writing"}},
	{ID: "philosophy", Cost: 90, Requires: []string{"writing", "masonry"}},
	{ID: "currency", Cost: 80, Requires: []string{"bronze_working", "writing"}},
	{ID: "construction", Cost: 90, Requires: []string{"masonry", "mathematics"}},
	{ID: "feudalism", Cost: 120, Requires: []string{"iron_working", "philosophy"}},
	{ID: "banking", Cost: 140, Requires: []string{"currency", "philosophy"}},
	{ID: "gunpowder", Cost: 180, Requires: []string{"feudalism", "construction"}},
}

var Buildings = []BuildingType{
	{ID: "granary", Cost: 40, Requires: "pottery"},
	{ID: "workshop", Cost: 50, Requires: "bronze_working"},
	{ID: "market", Cost: 60, Requires: "currency"},
	{ID: "library", Cost: 60, Requires: "writing"},
	{ID: "temple", Cost: 40, Requires: "philosophy"},
	{ID: "barracks", Cost: 40},
	{ID: "walls", Cost: 50, Requires: "masonry"},
	{ID: "aqueduct", Cost: 80, Requires: "construction"},
	{ID: "bank", Cost: 100, Requires: "banking"},
	{ID: "courthouse", Cost: 70, Requires: "feudalism"},
}

var UnitTypes = []UnitType{
	{ID: "settler", Cost: 40, Defense: 1, Moves: 1, Civilian: true},
	{ID: "worker", Cost: 30, Defense: 1, Moves: 1, Civilian: true},
	{ID: "warrior", Cost: 20, Attack: 4, Defense: 3, Moves: 1, Range: 1},
	{ID: "archer", Cost: 30, Attack: 5, Defense: 4, Moves: 1, Range: 2, Requires: "archery"},
	{ID: "spearman", Cost: 30, Attack: 5, Defense: 6, Moves: 1, Range: 1, Requires: "bronze_working"},
	{ID: "horseman", Cost: 40, Attack: 7, Defense: 4, Moves: 2, Range: 1, Requires: "horseback_riding"},
	{ID: "swordsman", Cost: 45, Attack: 9, Defense: 6, Moves: 1, Range: 1, Requires: "iron_working"},
	{ID: "catapult", Cost: 60, Attack: 10, Defense: 3, Moves: 1, Range: 2, Requires: "mathematics"},
	{ID: "knight", Cost: 80, Attack: 14, Defense: 9, Moves: 2, Range: 1, Requires: "feudalism"},
	{ID: "musketman", Cost: 90, Attack: 16, Defense: 16, Moves: 1, Range: 1, Requires: "gunpowder"},
	{ID: "galley", Cost: 40, Attack: 3, Defense: 3, Moves: 3, Range: 1, Naval: true, Requires: "sailing"},
	{ID: "trireme", Cost: 55, Attack: 6, Defense: 5, Moves: 3, Range: 1, Naval: true, Requires: "sailing"},
}

func LookupTech(id string) (Tech, bool) {
	for _, t := range Techs {
		if t.ID == id {
			return t, true
		}
	}
	return Tech{}, false
}

func LookupUnit(id string) (UnitType, bool) {
	for _, u := range UnitTypes {
		if u.ID == id {
			return u, true
		}
	}
	return UnitType{}, false
}

func LookupBuilding(id string) (BuildingType, bool) {
	for _, b := range Buildings {
		if b.ID == id {
			return b, true
		}
	}
	return BuildingType{}, false
}

// IsNaval reports whether the item is a sea unit, which only coastal cities may build.
func IsNaval(item Item) bool {
	if item.Kind != UnitItem {
		return false
	}
	u, ok := LookupUnit(item.ID)
	return ok && u.Naval
}

// IsCivilian reports whether units of this kind count toward military strength.
func IsCivilian(kind string) bool {
	u, ok := LookupUnit(kind)
	return ok && u.Civilian
}
