// Package service implements the campaign escrow engine: campaign
// registry, deposit matching, staker lifecycle and reward inventory.
// Every operation runs as one database transaction; outbound custody
// transfers are collected during the operation and dispatched only after
// commit. Local state is the authority, the sends are best-effort.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/cache"
	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/metrics"
	"github.com/n1platform/stakevault/internal/repository"
)

// Engine owns the four record kinds and reacts to deposit notifications
// from the two custody systems.
type Engine struct {
	db          *sqlx.DB
	campaigns   *repository.CampaignRepository
	descriptors *repository.DescriptorRepository
	stakers     *repository.StakerRepository
	rewards     *repository.RewardRepository
	sender      custody.Sender
	assets      custody.MetadataSource
	cache       *cache.CampaignCache
	account     string
	clock       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source. The engine only ever reads
// second-granularity timestamps from it.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.clock = fn }
}

// WithCache enables the memo→campaign read cache.
func WithCache(c *cache.CampaignCache) Option {
	return func(e *Engine) { e.cache = c }
}

// NewEngine creates the engine. account is this engine's identity on the
// custody systems; deposit events addressed elsewhere are ignored.
func NewEngine(db *sqlx.DB, sender custody.Sender, assets custody.MetadataSource, account string, opts ...Option) *Engine {
	e := &Engine{
		db:          db,
		campaigns:   repository.NewCampaignRepository(),
		descriptors: repository.NewDescriptorRepository(),
		stakers:     repository.NewStakerRepository(),
		rewards:     repository.NewRewardRepository(),
		sender:      sender,
		assets:      assets,
		account:     account,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// now returns the current engine time in epoch seconds.
func (e *Engine) now() int64 {
	return e.clock().Unix()
}

// dispatch issues the transfers collected by a committed operation.
// Failures are logged and counted; they never affect engine state.
func (e *Engine) dispatch(ctx context.Context, transfers []custody.Transfer) {
	for _, t := range transfers {
		if err := e.sender.Send(ctx, t); err != nil {
			metrics.RecordOutboundTransfer(string(t.Kind), "dropped")
			slog.Error("outbound transfer failed",
				slog.String("system", t.System),
				slog.String("to", t.To),
				slog.String("error", err.Error()))
			continue
		}
		metrics.RecordOutboundTransfer(string(t.Kind), "published")
	}
}
