// Package store persists completed simulation runs so they can be
// listed, re-inspected, and exported later.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/diffusion"
)

// RunRecord is one persisted simulation run: the headline parameters,
// the full config snapshot for replay, and the adoption series.
type RunRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Seed       int64   `json:"seed"`
	Steps      int     `json:"steps"`
	Agents     int     `json:"agents"`
	Neighbors  int     `json:"neighbors"`
	Randomness float64 `json:"randomness"`

	// ConfigYAML is the complete configuration the run was produced
	// from. Feeding it back through config.Parse reproduces the run.
	ConfigYAML string `json:"config_yaml,omitempty"`

	InitialAdopters int `json:"initial_adopters"`
	FinalAdopters   int `json:"final_adopters"`

	// Series is omitted by ListRuns; GetRun returns it in full.
	Series []diffusion.TickPoint `json:"series,omitempty"`
}

// RunStore persists and retrieves simulation runs.
type RunStore interface {
	// SaveRun stores a run, assigning ID and CreatedAt if unset.
	// Saving a record with an existing ID replaces it.
	SaveRun(ctx context.Context, rec *RunRecord) error

	// GetRun retrieves a run with its full series. Returns nil if the
	// id is unknown.
	GetRun(ctx context.Context, id string) (*RunRecord, error)

	// ListRuns returns run summaries, newest first, without series.
	ListRuns(ctx context.Context) ([]RunRecord, error)

	DeleteRun(ctx context.Context, id string) error
	Close() error
}

// NewRunRecord builds a record from a finished run and the config that
// produced it.
func NewRunRecord(name string, cfg *config.Config, res *diffusion.Result) (*RunRecord, error) {
	snapshot, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot config: %w", err)
	}
	return &RunRecord{
		Name:            name,
		Seed:            res.Seed,
		Steps:           cfg.Steps,
		Agents:          cfg.Network.Agents,
		Neighbors:       cfg.Network.Neighbors,
		Randomness:      cfg.Network.Randomness,
		ConfigYAML:      string(snapshot),
		InitialAdopters: res.InitialAdopters,
		FinalAdopters:   res.FinalCount(),
		Series:          res.Series,
	}, nil
}

// generateRunID derives a content-addressed id. Re-saving a record with
// the same name, seed, steps, and timestamp replaces the earlier copy.
func generateRunID(rec *RunRecord) string {
	content := fmt.Sprintf("%s|%d|%d|%s", rec.Name, rec.Seed, rec.Steps, rec.CreatedAt.Format(time.RFC3339))
	hash := sha256.Sum256([]byte(content))
	return "run-" + hex.EncodeToString(hash[:])[:12]
}

// prepareRun fills the generated fields ahead of a save. CreatedAt is
// truncated to seconds so it survives the RFC3339 round-trip intact.
func prepareRun(rec *RunRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)
	if rec.ID == "" {
		rec.ID = generateRunID(rec)
	}
}
