package service

import (
	"context"
	"fmt"

	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/repository"
)

// PurgeStakers removes every staker record of a campaign and returns the
// count. Housekeeping only; it is the sole way out of a terminal state.
func (e *Engine) PurgeStakers(ctx context.Context, campaign string) (int64, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := e.stakers.PurgeByCampaign(tx, campaign)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fault.New(fault.NotFound, "no stakers were found for campaign %q", campaign)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

// PurgeRewardItems removes every reward item of a campaign and returns
// the count. Fails NotFound when nothing matched.
func (e *Engine) PurgeRewardItems(ctx context.Context, campaign string) (int64, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := e.rewards.PurgeByCampaign(tx, campaign)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fault.New(fault.NotFound, "no reward items were found for campaign %q", campaign)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

// DeleteRewardItem removes a single unassigned item from a pool that has
// not opened yet. Items whose campaign is already gone can be deleted at
// any time.
func (e *Engine) DeleteRewardItem(ctx context.Context, id int64) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := e.rewards.Get(tx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "reward item %d was not found", id)
		}
		return err
	}
	if !item.Available {
		return fault.New(fault.InvalidConfig, "reward item %d is assigned to a staker", id)
	}

	campaign, err := e.campaigns.Get(tx, item.Campaign)
	switch {
	case err == repository.ErrNotFound:
		// Orphaned item, campaign already deleted.
	case err != nil:
		return err
	default:
		if e.now() >= campaign.Start {
			return fault.New(fault.WindowViolation, "the campaign has already started, entry cannot be deleted")
		}
	}

	if err := e.rewards.Delete(tx, id); err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "reward item %d was not found", id)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
