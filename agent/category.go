package agent

import (
	"fmt"

	"civ/game"
)

// Category is the kind of decision an agent makes each turn.
type Category int

const (
	Research Category = iota
	Production
	UnitAction
)

var categoryNames = [...]string{"research", "production", "unitAction"}

// Categories lists every category in decision order.
var Categories = []Category{Research, Production, UnitAction}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// Arity is the length of the feature vector of a category: 7 player features followed by
// the category features.
func (c Category) Arity() int {
	return playerFeatures + c.contextFeatures()
}

func (c Category) contextFeatures() int {
	switch c {
	case Research:
		return 3
	case Production:
		return 8
	case UnitAction:
		return 13
	}
	return 0
}

// layers returns the network shape used for the category, input first.
func (c Category) layers() []int {
	switch c {
	case Research:
		return []int{c.Arity(), 32, 16, 5}
	case Production:
		return []int{c.Arity(), 32, 16, 12}
	default:
		return []int{c.Arity(), 64, 32, 10}
	}
}

// Context names the entity a decision is about. Research decisions have none.
type Context struct {
	City *game.City
	Unit *game.Unit
}

func (c Context) entity() int {
	switch {
	case c.City != nil:
		return c.City.ID
	case c.Unit != nil:
		return c.Unit.ID
	}
	return 0
}
