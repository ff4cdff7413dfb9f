// Package store persists serialized agents in SQLite and moves them in and out as
// portable export strings.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"civ/agent"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("agent not found")
	ErrInvalidFormat = errors.New("invalid agent format")
)

const schema = `
CREATE TABLE IF NOT EXISTS agents (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	name        TEXT NOT NULL,
	data        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT
);
`

// Record is a stored agent with its bookkeeping.
type Record struct {
	agent.Blob
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	ImportedFrom string     `json:"importedFrom,omitempty"`
	ImportedAt   *time.Time `json:"importedAt,omitempty"`
}

// Store manages agent records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create builds a new agent of the given kind and stores it.
func (s *Store) Create(kind agent.Kind, options ...agent.Option) (Record, error) {
	if _, err := agent.ParseKind(string(kind)); err != nil {
		return Record{}, err
	}
	return s.Add(Record{Blob: agent.New(kind, options...).Serialize()})
}

// Add stores r, assigning an id and creation time when missing.
func (s *Store) Add(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("marshal agent: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO agents (id, type, name, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, string(r.Type), r.Name, string(data), r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert agent: %w", err)
	}
	return r, nil
}

func (s *Store) Get(id string) (Record, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM agents WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("query agent: %w", err)
	}
	return decodeRecord(data)
}

// List returns every record in creation order.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT data FROM agents ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		r, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update replaces the stored agent state of id, keeping its bookkeeping.
func (s *Store) Update(id string, b agent.Blob) (Record, error) {
	r, err := s.Get(id)
	if err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	r.Blob = b
	r.ID = id
	r.UpdatedAt = &now

	data, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("marshal agent: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE agents SET type = ?, name = ?, data = ?, updated_at = ? WHERE id = ?`,
		string(r.Type), r.Name, string(data), now.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("update agent: %w", err)
	}
	return r, nil
}

// Save stores the current state of a, adding it when it is not stored yet.
func (s *Store) Save(a *agent.Agent) (Record, error) {
	r, err := s.Update(a.ID, a.Serialize())
	if errors.Is(err, ErrNotFound) {
		return s.Add(Record{Blob: a.Serialize()})
	}
	return r, err
}

func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Instantiate rebuilds a playable agent from a record.
func Instantiate(r Record, options ...agent.Option) (*agent.Agent, error) {
	return agent.Deserialize(r.Blob, options...)
}

func decodeRecord(data string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return Record{}, fmt.Errorf("unmarshal agent: %w", err)
	}
	return r, nil
}
