package game

import "slices"

// EndTurn resolves the player's economy: city yields, growth, production, research and
// culture. Units regain their movement.
func (l *Local) EndTurn(player int) {
	p := l.player(player)
	if p == nil {
		return
	}

	var gold, science float64
	for _, c := range l.cities {
		if c.Owner != player {
			continue
		}
		l.computeYields(c)
		gold += c.Gold
		science += c.Science

		c.foodStore += c.Food - 1.5*float64(c.Population)
		if c.foodStore >= 10+5*float64(c.Population) {
			c.Population++
			c.foodStore = 0
		} else if c.foodStore < 0 {
			c.foodStore = 0
		}

		c.Health = min(100, c.Health+5)
		if c.Producing {
			c.ProductionProgress += c.Production
			l.completeProduction(c)
		}
	}

	upkeep := 0.0
	for _, u := range l.units {
		if u.Owner == player {
			upkeep += 0.5
		}
	}
	p.gold += gold - upkeep
	p.science = science

	if tech, ok := LookupTech(p.researching); ok {
		p.progress += science
		if p.progress >= tech.Cost {
			p.researched = append(p.researched, tech.ID)
			p.researching = ""
			p.progress = 0
		}
	}

	p.culture += 1 + 2*float64(l.countBuildings(player, "temple"))
	if p.culture >= 30*float64(p.policies+1) {
		p.policies++
	}

	for _, u := range l.units {
		if u.Owner == player {
			u.MovementPoints = u.maxMoves
			u.CanMove = true
			u.Health = min(100, u.Health+10)
		}
	}
}

func (l *Local) computeYields(c *cityState) {
	farms, mines := 0.0, 0.0
	for _, n := range l.Map.Surrounding(c.Location) {
		switch l.Map.At(n).Improvement {
		case "farm":
			farms++
		case "mine":
			mines++
		}
	}
	pop := float64(c.Population)
	has := func(b string) float64 {
		if slices.Contains(c.Buildings, b) {
			return 1
		}
		return 0
	}
	c.Food = 2 + pop + farms + 2*has("granary")
	c.Production = 1 + pop/2 + mines + 2*has("workshop")
	c.Gold = 1 + pop/2 + 2*has("market") + 3*has("bank")
	c.Science = 1 + pop/2 + 2*has("library")
}

func (l *Local) completeProduction(c *cityState) {
	switch c.producing.Kind {
	case BuildingItem:
		b, ok := LookupBuilding(c.producing.ID)
		if !ok || c.ProductionProgress < b.Cost {
			return
		}
		c.Buildings = append(c.Buildings, b.ID)
	case UnitItem:
		u, ok := LookupUnit(c.producing.ID)
		if !ok || c.ProductionProgress < u.Cost {
			return
		}
		at := c.Location
		if u.Naval {
			for _, n := range l.Map.Surrounding(c.Location) {
				if l.Map.At(n).Terrain == Ocean {
					at = n
					break
				}
			}
		}
		l.spawnUnit(c.Owner, u.ID, at)
	}
	c.Producing = false
	c.ProductionProgress = 0
	c.producing = Item{}
}

func (l *Local) countBuildings(player int, building string) int {
	n := 0
	for _, c := range l.cities {
		if c.Owner == player && slices.Contains(c.Buildings, building) {
			n++
		}
	}
	return n
}

func (l *Local) AdvanceTurn() {
	l.turn++
}

// Winner returns the only player still holding cities, or -1.
func (l *Local) Winner() int {
	alive := -1
	for _, p := range l.players {
		if len(l.Cities(p.id)) == 0 {
			continue
		}
		if alive != -1 {
			return -1
		}
		alive = p.id
	}
	return alive
}
