package store

import (
	"context"
	"encoding/base64"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"civ/agent"
	"civ/engine"
	"civ/game"

	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// trained plays a short game so the tabular agent has learned values.
func trained(t *testing.T) *agent.Agent {
	t.Helper()
	rng := rand.New(rand.NewPCG(11, 12))
	sim := game.NewLocal(game.GenerateMap(16, 12, rng), game.NewStandardRules(), 2, rng)
	learner := agent.New(agent.KindQLearn, agent.WithName("learner"), agent.WithSeed(3))
	e := engine.New(sim, []*agent.Agent{learner, agent.New(agent.KindBasic)}, engine.WithMaxTurns(8))
	_, _, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, learner.Serialize().QTable)
	return learner
}

func TestCRUD(t *testing.T) {
	s := tempStore(t)

	created, err := s.Create(agent.KindQLearn, agent.WithName("tabular"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	t.Run("get and list", func(t *testing.T) {
		got, err := s.Get(created.ID)
		require.NoError(t, err)
		require.Equal(t, "tabular", got.Name)
		require.Equal(t, agent.KindQLearn, got.Type)

		_, err = s.Create(agent.KindBasic)
		require.NoError(t, err)
		all, err := s.List()
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, created.ID, all[0].ID, "List should keep creation order")
	})

	t.Run("update keeps bookkeeping", func(t *testing.T) {
		blob := created.Blob
		blob.Name = "renamed"
		updated, err := s.Update(created.ID, blob)
		require.NoError(t, err)
		require.NotNil(t, updated.UpdatedAt)
		require.True(t, updated.CreatedAt.Equal(created.CreatedAt))

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(created.ID))
		_, err := s.Get(created.ID)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, s.Delete(created.ID), ErrNotFound)
		_, err = s.Update(created.ID, created.Blob)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := s.Create("minimax")
		require.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	s := tempStore(t)
	a := agent.New(agent.KindDeepQ)

	first, err := s.Save(a)
	require.NoError(t, err)
	require.Equal(t, a.ID, first.ID)
	require.Nil(t, first.UpdatedAt)

	a.Stats.GamesWon = 3
	second, err := s.Save(a)
	require.NoError(t, err)
	require.NotNil(t, second.UpdatedAt)
	require.Equal(t, 3, second.Stats.GamesWon)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestExportImport(t *testing.T) {
	learner := trained(t)
	s := tempStore(t)
	stored, err := s.Save(learner)
	require.NoError(t, err)

	encoded, err := s.Export(stored.ID)
	require.NoError(t, err)

	t.Run("import into another store keeps the id", func(t *testing.T) {
		other := tempStore(t)
		imported, err := other.Import(encoded)
		require.NoError(t, err)
		require.Equal(t, stored.ID, imported.ID)
		require.Equal(t, "learner", imported.Name)
		require.NotNil(t, imported.ImportedAt)
		require.Equal(t, stored.QTable, imported.QTable)

		a, err := Instantiate(imported)
		require.NoError(t, err)
		require.Equal(t, agent.KindQLearn, a.Kind())
		require.Equal(t, learner.Stats.TurnsPlayed, a.Stats.TurnsPlayed)
		require.Equal(t, learner.Serialize().QTable, a.Serialize().QTable)
	})

	t.Run("id collision imports a copy", func(t *testing.T) {
		imported, err := s.Import(encoded)
		require.NoError(t, err)
		require.NotEqual(t, stored.ID, imported.ID)
		require.Equal(t, "Copy of learner", imported.Name)
		require.Equal(t, "learner", imported.ImportedFrom)

		all, err := s.List()
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("uncompressed exports are accepted", func(t *testing.T) {
		plain := base64.StdEncoding.EncodeToString(
			[]byte(`{"format":"ai-civilization-agent-v1","type":"basic","name":"Old"}`))
		imported, err := tempStore(t).Import(plain)
		require.NoError(t, err)
		require.Equal(t, agent.KindBasic, imported.Type)
		require.NotEmpty(t, imported.ID)
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := map[string]string{
			"not base64":     "%%%",
			"not json":       base64.StdEncoding.EncodeToString([]byte("hello")),
			"missing format": base64.StdEncoding.EncodeToString([]byte(`{"type":"basic","name":"x"}`)),
			"wrong format":   base64.StdEncoding.EncodeToString([]byte(`{"format":"chess","type":"basic","name":"x"}`)),
			"unknown type":   base64.StdEncoding.EncodeToString([]byte(`{"format":"ai-civilization-agent-v1","type":"minimax","name":"x"}`)),
			"bad epsilon": base64.StdEncoding.EncodeToString([]byte(
				`{"format":"ai-civilization-agent-v1","type":"qlearn","name":"x","hyperparameters":{"epsilon":2}}`)),
		}
		for name, encoded := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := s.Import(encoded)
				require.ErrorIs(t, err, ErrInvalidFormat)
			})
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Export("missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCollection(t *testing.T) {
	s := tempStore(t)
	a, err := s.Create(agent.KindQLearn, agent.WithName("a"))
	require.NoError(t, err)
	b, err := s.Create(agent.KindBasic, agent.WithName("b"))
	require.NoError(t, err)

	encoded, err := s.ExportCollection()
	require.NoError(t, err)

	t.Run("import into an empty store", func(t *testing.T) {
		other := tempStore(t)
		imported, err := other.ImportCollection(encoded)
		require.NoError(t, err)
		require.Len(t, imported, 2)
		require.Equal(t, a.ID, imported[0].ID)
		require.Equal(t, b.ID, imported[1].ID)
	})

	t.Run("selected agents only", func(t *testing.T) {
		one, err := s.ExportCollection(b.ID)
		require.NoError(t, err)
		imported, err := s.ImportCollection(one)
		require.NoError(t, err)
		require.Len(t, imported, 1)
		require.Equal(t, "Copy of b", imported[0].Name)
	})

	t.Run("single agent exports are not collections", func(t *testing.T) {
		single, err := s.Export(a.ID)
		require.NoError(t, err)
		_, err = s.ImportCollection(single)
		require.ErrorIs(t, err, ErrInvalidFormat)
	})
}
