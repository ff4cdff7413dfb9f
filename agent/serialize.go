package agent

import (
	"fmt"

	"civ/reward"
)

// Blob is the persisted form of an agent. Only the Q table of learned state survives;
// networks are rebuilt from the hyperparameters.
type Blob struct {
	ID              string             `json:"id,omitempty"`
	Type            Kind               `json:"type"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Stats           Stats              `json:"stats"`
	Hyperparameters Hyperparameters    `json:"hyperparameters"`
	QTable          []QEntry           `json:"qTable,omitempty"`
	RewardSystem    *reward.Serialized `json:"rewardSystem,omitempty"`
}

func (a *Agent) Serialize() Blob {
	rewards := a.rewards.Serialize()
	b := Blob{
		ID:              a.ID,
		Type:            a.Kind(),
		Name:            a.Name,
		Description:     a.Description,
		Stats:           a.Stats,
		Hyperparameters: a.policy.hyperparameters(),
		RewardSystem:    &rewards,
	}
	b.Stats.Rewards = append([]TurnReward(nil), a.Stats.Rewards...)
	if q, ok := a.policy.(*qlearn); ok {
		b.QTable = q.table.Entries()
	}
	return b
}

// Deserialize rebuilds an agent of the blob's type. The blob is assumed to be valid;
// callers reading untrusted input validate it first.
func Deserialize(b Blob, options ...Option) (*Agent, error) {
	if _, err := ParseKind(string(b.Type)); err != nil {
		return nil, fmt.Errorf("failed to deserialize agent: %w", err)
	}
	a := New(b.Type, WithName(b.Name), WithDescription(b.Description), WithHyperparameters(b.Hyperparameters))
	if b.ID != "" {
		a.ID = b.ID
	}
	a.Stats = b.Stats
	if b.RewardSystem != nil {
		a.rewards = reward.Deserialize(*b.RewardSystem)
	}
	if q, ok := a.policy.(*qlearn); ok {
		for _, e := range b.QTable {
			q.table.Set(e.State, e.Action, e.Value)
		}
	}
	for _, option := range options {
		option(a)
	}
	return a, nil
}
