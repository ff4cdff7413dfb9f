package reward

import "fmt"

type Type string

const (
	CityFounded             Type = "cityFounded"
	CityGrowth              Type = "cityGrowth"
	CityLost                Type = "cityLost"
	BuildingCompleted       Type = "buildingCompleted"
	WonderCompleted         Type = "wonderCompleted"
	UnitTrained             Type = "unitTrained"
	UnitKilled              Type = "unitKilled"
	UnitLost                Type = "unitLost"
	CityCapture             Type = "cityCapture"
	GoldIncome              Type = "goldIncome"
	NegativeGold            Type = "negativeGold"
	ResourceDiscovered      Type = "resourceDiscovered"
	TechResearched          Type = "techResearched"
	PolicyAdopted           Type = "policyAdopted"
	TileExplored            Type = "tileExplored"
	NaturalWonderDiscovered Type = "naturalWonderDiscovered"
	TurnCompleted           Type = "turnCompleted"
	ScoreIncrease           Type = "scoreIncrease"
	EarlyExpansion          Type = "earlyExpansion"
	MilitaryAdvantage       Type = "militaryAdvantage"
	TechLead                Type = "techLead"
)

// Types lists every reward type in display and serialization order.
var Types = []Type{
	CityFounded, CityGrowth, CityLost, BuildingCompleted, WonderCompleted,
	UnitTrained, UnitKilled, UnitLost, CityCapture,
	GoldIncome, NegativeGold, ResourceDiscovered,
	TechResearched, PolicyAdopted,
	TileExplored, NaturalWonderDiscovered,
	TurnCompleted, ScoreIncrease, EarlyExpansion, MilitaryAdvantage, TechLead,
}

type Setting struct {
	Value   float64 `json:"value" yaml:"value"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
}

// Spec holds the weight and enable flag of every reward type.
type Spec map[Type]Setting

func DefaultSpec() Spec {
	return Spec{
		CityFounded:             {10, true},
		CityGrowth:              {5, true},
		CityLost:                {-15, true},
		BuildingCompleted:       {3, true},
		WonderCompleted:         {15, true},
		UnitTrained:             {2, true},
		UnitKilled:              {5, true},
		UnitLost:                {-4, true},
		CityCapture:             {20, true},
		GoldIncome:              {0.1, true},
		NegativeGold:            {-5, true},
		ResourceDiscovered:      {3, true},
		TechResearched:          {8, true},
		PolicyAdopted:           {12, true},
		TileExplored:            {0.1, true},
		NaturalWonderDiscovered: {10, true},
		TurnCompleted:           {1, true},
		ScoreIncrease:           {0.5, true},
		EarlyExpansion:          {8, true},
		MilitaryAdvantage:       {3, true},
		TechLead:                {5, true},
	}
}

func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Override copies the settings of known types from o into s. Unknown types are an error.
func (s Spec) Override(o Spec) error {
	for k, v := range o {
		if _, ok := s[k]; !ok {
			return fmt.Errorf("unknown reward type %q", k)
		}
		s[k] = v
	}
	return nil
}
