package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/model"
)

// DescriptorRepository stores the per-campaign NFT deposit descriptors.
type DescriptorRepository struct{}

// NewDescriptorRepository creates a new descriptor repository.
func NewDescriptorRepository() *DescriptorRepository {
	return &DescriptorRepository{}
}

// Set inserts the descriptor for a campaign. Returns ErrDuplicate if one
// already exists; descriptors are write-once like the campaign itself.
func (r *DescriptorRepository) Set(db sqlx.Ext, d *model.DepositDescriptor) error {
	query := db.Rebind(`
		INSERT INTO deposit_descriptors (campaign, author, category, idata)
		VALUES (?, ?, ?, ?)
	`)

	_, err := db.Exec(query, d.Campaign, d.Author, d.Category, d.IData)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to set deposit descriptor: %w", err)
	}
	return nil
}

// Get retrieves the descriptor for a campaign.
func (r *DescriptorRepository) Get(db sqlx.Ext, campaign string) (*model.DepositDescriptor, error) {
	query := db.Rebind(`SELECT * FROM deposit_descriptors WHERE campaign = ?`)

	var d model.DepositDescriptor
	if err := sqlx.Get(db, &d, query, campaign); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deposit descriptor: %w", err)
	}
	return &d, nil
}

// Delete removes the descriptor for a campaign.
func (r *DescriptorRepository) Delete(db sqlx.Ext, campaign string) error {
	query := db.Rebind(`DELETE FROM deposit_descriptors WHERE campaign = ?`)

	result, err := db.Exec(query, campaign)
	if err != nil {
		return fmt.Errorf("failed to delete deposit descriptor: %w", err)
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
