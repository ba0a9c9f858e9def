package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/model"
)

// RewardRepository handles the finite reward pools of tokentonft
// campaigns.
type RewardRepository struct{}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository() *RewardRepository {
	return &RewardRepository{}
}

// Insert adds a Pooled item. Returns ErrDuplicate if the asset id is
// already in the pool.
func (r *RewardRepository) Insert(db sqlx.Ext, item *model.RewardItem) error {
	query := db.Rebind(`
		INSERT INTO reward_items (id, campaign, available, delivered, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := db.Exec(query,
		item.ID, item.Campaign, item.Available, item.Delivered, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert reward item: %w", err)
	}
	return nil
}

// Get retrieves a reward item by asset id.
func (r *RewardRepository) Get(db sqlx.Ext, id int64) (*model.RewardItem, error) {
	query := db.Rebind(`SELECT * FROM reward_items WHERE id = ?`)

	var item model.RewardItem
	if err := sqlx.Get(db, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reward item: %w", err)
	}
	return &item, nil
}

// CountByCampaign returns the pool size of a campaign, assigned and
// delivered items included; the filler capacity bound counts them all.
func (r *RewardRepository) CountByCampaign(db sqlx.Ext, campaign string) (int64, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM reward_items WHERE campaign = ?`)

	var count int64
	if err := sqlx.Get(db, &count, query, campaign); err != nil {
		return 0, fmt.Errorf("failed to count reward items: %w", err)
	}
	return count, nil
}

// AssignFirstPooled finds the oldest Pooled item of a campaign and marks
// it Assigned in a single statement, so two concurrent joins can never
// grab the same item. Returns ErrNotFound when the pool is empty.
func (r *RewardRepository) AssignFirstPooled(db sqlx.Ext, campaign string) (int64, error) {
	query := db.Rebind(`
		UPDATE reward_items SET available = FALSE
		WHERE id = (
			SELECT id FROM reward_items
			WHERE campaign = ? AND available = TRUE
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		)
		RETURNING id
	`)

	var id int64
	if err := sqlx.Get(db, &id, query, campaign); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to assign reward item: %w", err)
	}
	return id, nil
}

// MarkDelivered records that the item's asset was sent to the claiming
// staker.
func (r *RewardRepository) MarkDelivered(db sqlx.Ext, id int64) error {
	query := db.Rebind(`
		UPDATE reward_items SET delivered = TRUE
		WHERE id = ? AND delivered = FALSE
	`)

	result, err := db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to mark reward item delivered: %w", err)
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

// Release returns an Assigned item to the Pooled state after its staker
// retires early.
func (r *RewardRepository) Release(db sqlx.Ext, id int64) error {
	query := db.Rebind(`UPDATE reward_items SET available = TRUE WHERE id = ?`)

	if _, err := db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to release reward item: %w", err)
	}
	return nil
}

// Delete removes a single reward item.
func (r *RewardRepository) Delete(db sqlx.Ext, id int64) error {
	query := db.Rebind(`DELETE FROM reward_items WHERE id = ?`)

	result, err := db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reward item: %w", err)
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

// PurgeByCampaign deletes every reward item of a campaign and returns how
// many were removed.
func (r *RewardRepository) PurgeByCampaign(db sqlx.Ext, campaign string) (int64, error) {
	query := db.Rebind(`DELETE FROM reward_items WHERE campaign = ?`)

	result, err := db.Exec(query, campaign)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reward items: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
