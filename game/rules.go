package game

// Rules resolves combat in the sandbox world.
type Rules interface {
	AttackDice(strength float64) int
	DefendDice(strength float64) int
	DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int)
	DamagePerLoss() float64
}
