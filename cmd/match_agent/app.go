package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/talent-match/internal/comparison"
	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/db"
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/logging"
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/ranking"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/skills"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	taxonomy *skills.Taxonomy
	db       *db.DB // nil when records come from files
	repo     matching.Repository
	source   *features.CachingExtractor
	service  *matching.Service
	closers  []func()
}

// newApp wires storage, caches, the extractor and the matching service from cfg.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	logger, err := logging.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.taxonomy = skills.Default()
	if cfg.TaxonomyPath != "" {
		a.taxonomy, err = skills.LoadTaxonomy(cfg.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load taxonomy: %w", err)
		}
	}

	embedder, err := llm.NewEmbedder(ctx, cfg.LLM(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if c, ok := embedder.(io.Closer); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	if cfg.DatabaseURL != "" {
		a.db, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.db.Close)
		a.repo = a.db
	} else {
		a.repo, err = loadFileRepository(ctx, jobsPath, candidatesPath)
		if err != nil {
			return nil, err
		}
	}

	var cache features.Cache = features.NewMemoryCache()
	switch {
	case cfg.RedisURL != "":
		rc, err := features.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		cache = &features.TieredCache{L1: cache, L2: rc}
	case a.db != nil:
		cache = &features.TieredCache{L1: cache, L2: db.NewFeatureStore(a.db)}
	}

	a.source = features.NewCachingExtractor(features.NewExtractor(a.taxonomy, embedder), cache)
	a.source.OnCacheError = func(key string, err error) {
		logger.Warn("feature cache error", zap.String("key", key), zap.Error(err))
	}

	scorer, err := cfg.Scorer()
	if err != nil {
		return nil, err
	}
	a.service = matching.NewService(a.repo, a.source,
		matching.WithLogger(logger),
		matching.WithWorkers(cfg.ExtractWorkers),
		matching.WithTaxonomy(a.taxonomy),
		matching.WithRanker(ranking.NewRanker(scorer, cfg.RankingOptions())),
		matching.WithBuilder(comparison.NewBuilder(scorer, a.taxonomy, cfg.ComparisonOptions())),
		matching.WithWarmOnWrite(cfg.WarmOnWrite),
	)

	logger.Debug("app initialized",
		zap.String("embedding_provider", cfg.EmbeddingProvider),
		zap.Bool("database", a.db != nil),
		zap.Bool("redis", cfg.RedisURL != ""),
	)
	return a, nil
}

// requireDB returns the database or an error naming the command that needs it.
func (a *app) requireDB(command string) (*db.DB, error) {
	if a.db == nil {
		return nil, fmt.Errorf("%s requires --database-url or DATABASE_URL", command)
	}
	return a.db, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.logger.Sync()
}

// loadFileRepository builds an in-memory repository from record files. Empty
// paths are skipped. Every record must carry an id.
func loadFileRepository(ctx context.Context, jobsFile, candidatesFile string) (*matching.MemoryRepository, error) {
	repo := matching.NewMemoryRepository()

	if jobsFile != "" {
		jobs, err := schemas.ReadJobs(jobsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load jobs: %w", err)
		}
		for i, job := range jobs {
			if err := job.Validate(); err != nil {
				return nil, fmt.Errorf("invalid job %d in %s: %w", i, jobsFile, err)
			}
			if job.Version == 0 {
				if job.Version, err = contentVersion(job); err != nil {
					return nil, fmt.Errorf("invalid job %d in %s: %w", i, jobsFile, err)
				}
			}
			if err := repo.PutJob(ctx, job); err != nil {
				return nil, err
			}
		}
	}

	if candidatesFile != "" {
		candidates, err := schemas.ReadCandidates(candidatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidates: %w", err)
		}
		for i, c := range candidates {
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("invalid candidate %d in %s: %w", i, candidatesFile, err)
			}
			if c.Version == 0 {
				if c.Version, err = contentVersion(c); err != nil {
					return nil, fmt.Errorf("invalid candidate %d in %s: %w", i, candidatesFile, err)
				}
			}
			if err := repo.PutCandidate(ctx, c); err != nil {
				return nil, err
			}
		}
	}

	return repo, nil
}

// contentVersion derives a positive version from the record's JSON, so that
// editing an unversioned file record changes its feature cache key.
func contentVersion(record any) (int, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return 0, err
	}
	sum := blake2b.Sum256(data)
	return int(binary.BigEndian.Uint32(sum[:4])>>1) + 1, nil
}
