package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/model"
)

// StakerRepository handles per-participant staking records.
type StakerRepository struct{}

// NewStakerRepository creates a new staker repository.
func NewStakerRepository() *StakerRepository {
	return &StakerRepository{}
}

// Insert creates an Active staker record. Returns ErrDuplicate if the
// participant already holds a record anywhere in the system.
func (r *StakerRepository) Insert(db sqlx.Ext, s *model.Staker) error {
	query := db.Rebind(`
		INSERT INTO stakers (participant, campaign, join_time,
			claimable_reward, claimed, retired, asset_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := db.Exec(query,
		s.Participant, s.Campaign, s.JoinTime,
		s.ClaimableReward, s.Claimed, s.Retired, s.AssetID, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert staker: %w", err)
	}
	return nil
}

// Get retrieves a staker record by participant.
func (r *StakerRepository) Get(db sqlx.Ext, participant string) (*model.Staker, error) {
	query := db.Rebind(`SELECT * FROM stakers WHERE participant = ?`)

	var s model.Staker
	if err := sqlx.Get(db, &s, query, participant); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get staker: %w", err)
	}
	return &s, nil
}

// AssetUsed reports whether an asset id was ever bound to any staker
// record, terminal ones included. Indexed lookup, not a table scan.
func (r *StakerRepository) AssetUsed(db sqlx.Ext, assetID int64) (bool, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM stakers WHERE asset_id = ?`)

	var count int64
	if err := sqlx.Get(db, &count, query, assetID); err != nil {
		return false, fmt.Errorf("failed to check asset usage: %w", err)
	}
	return count > 0, nil
}

// CountByCampaign returns the number of staker records for a campaign,
// terminal ones included; places are never freed by claim or retire.
func (r *StakerRepository) CountByCampaign(db sqlx.Ext, campaign string) (int64, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM stakers WHERE campaign = ?`)

	var count int64
	if err := sqlx.Get(db, &count, query, campaign); err != nil {
		return 0, fmt.Errorf("failed to count stakers: %w", err)
	}
	return count, nil
}

// MarkClaimed flips an Active record to the terminal Claimed state. The
// guard in the WHERE clause makes the transition atomic: zero rows
// affected means the record is missing or already terminal.
func (r *StakerRepository) MarkClaimed(db sqlx.Ext, participant string) error {
	return r.markTerminal(db, participant,
		`UPDATE stakers SET claimed = TRUE
		 WHERE participant = ? AND claimed = FALSE AND retired = FALSE`)
}

// MarkRetired flips an Active record to the terminal Retired state.
func (r *StakerRepository) MarkRetired(db sqlx.Ext, participant string) error {
	return r.markTerminal(db, participant,
		`UPDATE stakers SET retired = TRUE
		 WHERE participant = ? AND claimed = FALSE AND retired = FALSE`)
}

func (r *StakerRepository) markTerminal(db sqlx.Ext, participant, query string) error {
	result, err := db.Exec(db.Rebind(query), participant)
	if err != nil {
		return fmt.Errorf("failed to update staker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeByCampaign deletes every staker record of a campaign and returns
// how many were removed.
func (r *StakerRepository) PurgeByCampaign(db sqlx.Ext, campaign string) (int64, error) {
	query := db.Rebind(`DELETE FROM stakers WHERE campaign = ?`)

	result, err := db.Exec(query, campaign)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stakers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
