package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

const (
	AgentFormat    = "ai-civilization-agent-v1"
	CollectionType = "ai-civilization-agent-collection"
	version        = "1.0"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type exportedAgent struct {
	Record
	Format     string    `json:"format"`
	ExportedAt time.Time `json:"exportedAt"`
}

type exportedCollection struct {
	Type      string   `json:"type"`
	Version   string   `json:"version"`
	Timestamp int64    `json:"timestamp"`
	Agents    []Record `json:"agents"`
}

// Export encodes a stored agent as base64 of zstd compressed JSON.
func (s *Store) Export(id string) (string, error) {
	r, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return encode(exportedAgent{
		Record:     r,
		Format:     AgentFormat,
		ExportedAt: time.Now().UTC(),
	})
}

// Import validates an exported agent and stores it. An agent whose id is already stored
// is kept as a renamed copy under a fresh id.
func (s *Store) Import(encoded string) (Record, error) {
	data, err := decode(encoded)
	if err != nil {
		return Record{}, err
	}
	if err := validate(agentSchema, data); err != nil {
		return Record{}, err
	}
	var e exportedAgent
	if err := json.Unmarshal(data, &e); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return s.importRecord(e.Record)
}

// ExportCollection encodes the given agents, or every stored agent when no ids are given.
func (s *Store) ExportCollection(ids ...string) (string, error) {
	var records []Record
	if len(ids) == 0 {
		all, err := s.List()
		if err != nil {
			return "", err
		}
		records = all
	}
	for _, id := range ids {
		r, err := s.Get(id)
		if err != nil {
			return "", err
		}
		records = append(records, r)
	}
	if records == nil {
		records = []Record{}
	}
	return encode(exportedCollection{
		Type:      CollectionType,
		Version:   version,
		Timestamp: time.Now().UnixMilli(),
		Agents:    records,
	})
}

// ImportCollection validates an exported collection and stores each of its agents like
// Import does.
func (s *Store) ImportCollection(encoded string) ([]Record, error) {
	data, err := decode(encoded)
	if err != nil {
		return nil, err
	}
	if err := validate(collectionSchema, data); err != nil {
		return nil, err
	}
	var c exportedCollection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	out := make([]Record, 0, len(c.Agents))
	for _, r := range c.Agents {
		imported, err := s.importRecord(r)
		if err != nil {
			return out, err
		}
		out = append(out, imported)
	}
	return out, nil
}

func (s *Store) importRecord(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if _, err := s.Get(r.ID); err == nil {
		log.Info().Msgf("agent %s already exists, importing %q as a copy", r.ID, r.Name)
		r.ID = uuid.NewString()
		r.ImportedFrom = r.Name
		r.Name = "Copy of " + r.Name
	} else if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	now := time.Now().UTC()
	r.ImportedAt = &now
	return s.Add(r)
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("failed to create encoder: %w", err)
	}
	defer enc.Close()
	return base64.StdEncoding.EncodeToString(enc.EncodeAll(data, nil)), nil
}

// decode reverses encode. Plain base64 JSON without compression is accepted too.
func decode(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return data, nil
}
