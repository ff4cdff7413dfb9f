package game

// Score tallies a player's holdings into a single number.
func (l *Local) Score(player int) float64 {
	p := l.player(player)
	if p == nil {
		return 0
	}
	score := 5*float64(len(p.researched)) + 6*float64(p.policies) + 2*float64(p.battlesWon)
	for _, c := range l.cities {
		if c.Owner == player {
			score += 10 + 3*float64(c.Population) + 4*float64(len(c.Buildings))
		}
	}
	return score
}

// relativeStrength compares the player's military units against the average opponent
// and its technology count against the best opponent.
func (l *Local) relativeStrength(player int) (militaryRatio float64, techLead int) {
	military := make(map[int]float64)
	for _, u := range l.units {
		if !u.civilian {
			military[u.Owner]++
		}
	}

	militaryRatio = 1
	others, otherMilitary, maxOtherTechs := 0, 0.0, 0
	var own *playerState
	for _, p := range l.players {
		if p.id == player {
			own = p
			continue
		}
		others++
		otherMilitary += military[p.id]
		maxOtherTechs = max(maxOtherTechs, len(p.researched))
	}
	if own == nil {
		return militaryRatio, 0
	}
	if others > 0 && otherMilitary > 0 {
		militaryRatio = military[player] / (otherMilitary / float64(others))
	}
	if maxOtherTechs > 0 {
		techLead = len(own.researched) - maxOtherTechs
	}
	return militaryRatio, techLead
}
