package game

type StandardRules struct {
	MaxAttackDice int
	MaxDefendDice int
	Damage        float64
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		MaxAttackDice: 3,
		MaxDefendDice: 2,
		Damage:        25,
	}
}

// AttackDice grants one die plus one per 5 points of attack strength.
func (sr *StandardRules) AttackDice(strength float64) int {
	return min(max(1, 1+int(strength/5)), sr.MaxAttackDice)
}

func (sr *StandardRules) DefendDice(strength float64) int {
	return min(max(1, 1+int(strength/5)), sr.MaxDefendDice)
}

// DetermineAttackOutcome compares rolls pairwise; both slices must be sorted in
// descending order. Ties go to the defender.
func (sr *StandardRules) DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return
}

func (sr *StandardRules) DamagePerLoss() float64 {
	return sr.Damage
}
