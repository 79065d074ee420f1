package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/pgvector/pgvector-go"
)

// FeatureStore persists feature sets with their embeddings as pgvector columns.
// It implements features.Cache and is used as the second tier behind an
// in-process cache.
type FeatureStore struct {
	db *DB
}

var _ features.Cache = (*FeatureStore)(nil)

// NewFeatureStore creates a FeatureStore on db.
func NewFeatureStore(db *DB) *FeatureStore {
	return &FeatureStore{db: db}
}

// Get retrieves a feature set by cache key
func (s *FeatureStore) Get(ctx context.Context, key string) (*types.FeatureSet, bool, error) {
	var raw []byte
	var embedding pgvector.Vector
	err := s.db.pool.QueryRow(ctx,
		`SELECT features, embedding FROM feature_sets WHERE cache_key = $1`,
		key,
	).Scan(&raw, &embedding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get feature set %s: %w", key, err)
	}

	var fs types.FeatureSet
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil, false, fmt.Errorf("failed to decode feature set %s: %w", key, err)
	}
	fs.Embedding = embedding.Slice()
	return &fs, true, nil
}

// Set stores a feature set under key. Feature sets without an embedding are not stored.
func (s *FeatureStore) Set(ctx context.Context, key string, fs *types.FeatureSet) error {
	if len(fs.Embedding) == 0 {
		return nil
	}
	lexical := *fs
	lexical.Embedding = nil
	jsonBytes, err := json.Marshal(&lexical)
	if err != nil {
		return fmt.Errorf("failed to marshal feature set: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO feature_sets (cache_key, record_kind, record_id, version, features, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (cache_key) DO UPDATE SET features = $5, embedding = $6, created_at = NOW()`,
		key, string(fs.Kind), fs.RecordID, fs.Version, jsonBytes, pgvector.NewVector(fs.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save feature set %s: %w", key, err)
	}
	return nil
}
