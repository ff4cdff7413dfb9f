package game

import "fmt"

// DecisionKind tags the variant held by a Decision.
type DecisionKind int

const (
	ResearchDecision DecisionKind = iota
	ProductionDecision
	MoveDecision
	SettleDecision
	BuildDecision
	AttackDecision
)

var decisionKindNames = []string{"research", "production", "move", "settle", "build", "attack"}

func (k DecisionKind) String() string {
	if k < 0 || int(k) >= len(decisionKindNames) {
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
	return decisionKindNames[k]
}

func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DecisionKind) UnmarshalText(text []byte) error {
	for i, name := range decisionKindNames {
		if name == string(text) {
			*k = DecisionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown decision kind %q", text)
}

type ItemKind string

const (
	BuildingItem ItemKind = "building"
	UnitItem     ItemKind = "unit"
)

// Item is something a city can produce.
type Item struct {
	Kind ItemKind `json:"type"`
	ID   string   `json:"id"`
}

type TargetKind string

const (
	UnitTarget TargetKind = "unit"
	CityTarget TargetKind = "city"
)

// Target is an enemy unit or city as seen from one of the player's units.
type Target struct {
	ID       int        `json:"id"`
	Kind     TargetKind `json:"type"`
	Owner    int        `json:"owner"`
	Location Coord      `json:"location"`
}

// Decision is one order for the World. Only the fields of its Kind are set, which keeps
// it comparable so it can key Q-values directly. Build it with the constructors below.
type Decision struct {
	Kind        DecisionKind `json:"type"`
	Tech        string       `json:"technology,omitempty"`
	CityID      int          `json:"cityId,omitempty"`
	Item        Item         `json:"item,omitempty"`
	UnitID      int          `json:"unitId,omitempty"`
	Destination Coord        `json:"destination,omitempty"`
	Improvement string       `json:"improvement,omitempty"`
	TargetID    int          `json:"targetId,omitempty"`
	TargetKind  TargetKind   `json:"targetType,omitempty"`
}

func Research(tech string) Decision {
	return Decision{Kind: ResearchDecision, Tech: tech}
}

func Production(cityID int, item Item) Decision {
	return Decision{Kind: ProductionDecision, CityID: cityID, Item: item}
}

func Move(unitID int, destination Coord) Decision {
	return Decision{Kind: MoveDecision, UnitID: unitID, Destination: destination}
}

func Settle(unitID int) Decision {
	return Decision{Kind: SettleDecision, UnitID: unitID}
}

func Build(unitID int, improvement string) Decision {
	return Decision{Kind: BuildDecision, UnitID: unitID, Improvement: improvement}
}

func Attack(unitID, targetID int, kind TargetKind) Decision {
	return Decision{Kind: AttackDecision, UnitID: unitID, TargetID: targetID, TargetKind: kind}
}

func (d Decision) String() string {
	switch d.Kind {
	case ResearchDecision:
		return fmt.Sprintf("research(%s)", d.Tech)
	case ProductionDecision:
		return fmt.Sprintf("production(city%d, %s:%s)", d.CityID, d.Item.Kind, d.Item.ID)
	case MoveDecision:
		return fmt.Sprintf("move(unit%d, %d,%d)", d.UnitID, d.Destination.X, d.Destination.Y)
	case SettleDecision:
		return fmt.Sprintf("settle(unit%d)", d.UnitID)
	case BuildDecision:
		return fmt.Sprintf("build(unit%d, %s)", d.UnitID, d.Improvement)
	case AttackDecision:
		return fmt.Sprintf("attack(unit%d, %s%d)", d.UnitID, d.TargetKind, d.TargetID)
	}
	return d.Kind.String()
}
