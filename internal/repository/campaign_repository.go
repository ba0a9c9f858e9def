package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/model"
)

// CampaignRepository handles campaign data operations. Repositories are
// stateless; the executor (a *sqlx.DB or an enclosing *sqlx.Tx) is passed
// per call.
type CampaignRepository struct{}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{}
}

// Create inserts a campaign record. Returns ErrDuplicate if the name or
// the memo is already taken.
func (r *CampaignRepository) Create(db sqlx.Ext, c *model.Campaign) error {
	query := db.Rebind(`
		INSERT INTO campaigns (name, variant, filler, start_at, finish_at,
			time_to_reward, nft_account, token_account, asset_quantity,
			asset_symbol, return_entry, places, is_limited, print_on_demand,
			memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := db.Exec(query,
		c.Name, c.Variant, c.Filler, c.Start, c.Finish,
		c.TimeToReward, c.NFTAccount, c.TokenAccount, c.AssetQuantity,
		c.AssetSymbol, c.ReturnEntry, c.Places, c.IsLimited, c.PrintOnDemand,
		c.Memo, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// Get retrieves a campaign by name.
func (r *CampaignRepository) Get(db sqlx.Ext, name string) (*model.Campaign, error) {
	query := db.Rebind(`SELECT * FROM campaigns WHERE name = ?`)

	var c model.Campaign
	if err := sqlx.Get(db, &c, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

// GetByMemo resolves a campaign through the unique memo index.
func (r *CampaignRepository) GetByMemo(db sqlx.Ext, memo int64) (*model.Campaign, error) {
	query := db.Rebind(`SELECT * FROM campaigns WHERE memo = ?`)

	var c model.Campaign
	if err := sqlx.Get(db, &c, query, memo); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign by memo: %w", err)
	}
	return &c, nil
}

// Delete removes a campaign record. Dependent staker and reward records
// are intentionally left alone; purging them is a separate admin step.
func (r *CampaignRepository) Delete(db sqlx.Ext, name string) error {
	query := db.Rebind(`DELETE FROM campaigns WHERE name = ?`)

	result, err := db.Exec(query, name)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
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
