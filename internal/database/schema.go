package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The schema is applied at startup. Statements are idempotent and written
// in the dialect subset shared by PostgreSQL and the sqlite driver the
// tests run on. Timestamps are stored as epoch seconds; the engine works
// at second granularity throughout.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		name            TEXT PRIMARY KEY,
		variant         TEXT NOT NULL,
		filler          TEXT NOT NULL DEFAULT '',
		start_at        BIGINT NOT NULL,
		finish_at       BIGINT NOT NULL,
		time_to_reward  BIGINT NOT NULL,
		nft_account     TEXT NOT NULL,
		token_account   TEXT NOT NULL,
		asset_quantity  BIGINT NOT NULL,
		asset_symbol    TEXT NOT NULL,
		return_entry    BOOLEAN NOT NULL DEFAULT FALSE,
		places          BIGINT NOT NULL,
		is_limited      BOOLEAN NOT NULL DEFAULT FALSE,
		print_on_demand BOOLEAN NOT NULL DEFAULT FALSE,
		memo            BIGINT NOT NULL,
		created_at      BIGINT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_campaigns_memo ON campaigns (memo)`,

	`CREATE TABLE IF NOT EXISTS deposit_descriptors (
		campaign TEXT PRIMARY KEY,
		author   TEXT NOT NULL,
		category TEXT NOT NULL,
		idata    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS stakers (
		participant      TEXT PRIMARY KEY,
		campaign         TEXT NOT NULL,
		join_time        BIGINT NOT NULL,
		claimable_reward BIGINT NOT NULL,
		claimed          BOOLEAN NOT NULL DEFAULT FALSE,
		retired          BOOLEAN NOT NULL DEFAULT FALSE,
		asset_id         BIGINT NOT NULL,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stakers_campaign ON stakers (campaign)`,
	`CREATE INDEX IF NOT EXISTS idx_stakers_asset ON stakers (asset_id)`,

	`CREATE TABLE IF NOT EXISTS reward_items (
		id         BIGINT PRIMARY KEY,
		campaign   TEXT NOT NULL,
		available  BOOLEAN NOT NULL DEFAULT TRUE,
		delivered  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reward_items_pool ON reward_items (campaign, available)`,
}

// Migrate applies the schema statements in order.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
