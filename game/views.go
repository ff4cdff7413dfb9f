package game

// City is a read-only view of a city.
type City struct {
	ID                 int      `json:"id"`
	Owner              int      `json:"owner"`
	Name               string   `json:"name"`
	Location           Coord    `json:"location"`
	Population         int      `json:"population"`
	Food               float64  `json:"food"`
	Production         float64  `json:"production"`
	Gold               float64  `json:"gold"`
	Science            float64  `json:"science"`
	Buildings          []string `json:"buildings"`
	ProductionProgress float64  `json:"productionProgress"`
	Health             float64  `json:"health"`
	Producing          bool     `json:"producing"`
}

// Unit is a read-only view of a unit.
type Unit struct {
	ID             int     `json:"id"`
	Owner          int     `json:"owner"`
	Kind           string  `json:"type"`
	Location       Coord   `json:"location"`
	Health         float64 `json:"health"`
	MovementPoints int     `json:"movementPoints"`
	Experience     float64 `json:"experience"`
	Attack         float64 `json:"attackStrength"`
	Defense        float64 `json:"defenseStrength"`
	CanMove        bool    `json:"canMove"`
}

func (u Unit) IsSettler() bool { return u.Kind == "settler" }
func (u Unit) IsWorker() bool  { return u.Kind == "worker" }
