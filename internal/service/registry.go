package service

import (
	"context"
	"fmt"

	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/model"
	"github.com/n1platform/stakevault/internal/repository"
)

// CreateCampaign validates and inserts a campaign record. Configuration
// is immutable afterwards; there is no update operation.
func (e *Engine) CreateCampaign(ctx context.Context, c model.Campaign) error {
	now := e.now()
	if err := validateCampaign(&c, now); err != nil {
		return err
	}
	c.CreatedAt = now

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := e.campaigns.Get(tx, c.Name); err == nil {
		return fault.New(fault.AlreadyExists, "campaign %q already exists", c.Name)
	} else if err != repository.ErrNotFound {
		return fmt.Errorf("failed to check campaign: %w", err)
	}

	if _, err := e.campaigns.GetByMemo(tx, c.Memo); err == nil {
		return fault.New(fault.AlreadyExists, "memo %d is already assigned to another campaign", c.Memo)
	} else if err != repository.ErrNotFound {
		return fmt.Errorf("failed to check memo: %w", err)
	}

	if err := e.campaigns.Create(tx, &c); err != nil {
		if err == repository.ErrDuplicate {
			return fault.New(fault.AlreadyExists, "campaign %q already exists", c.Name)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func validateCampaign(c *model.Campaign, now int64) error {
	if c.Name == "" {
		return fault.New(fault.InvalidConfig, "campaign name must not be empty")
	}
	if c.Memo <= 0 {
		return fault.New(fault.InvalidConfig, "memo must be a valid number")
	}
	if c.NFTAccount == "" || c.TokenAccount == "" {
		return fault.New(fault.InvalidConfig, "both custody accounts must be set")
	}
	if c.AssetQuantity <= 0 || c.AssetSymbol == "" {
		return fault.New(fault.InvalidConfig, "asset descriptor must carry a positive quantity and a symbol")
	}
	if c.Start < now {
		return fault.New(fault.InvalidConfig, "date specified in 'start' has already passed")
	}
	if c.Start >= c.Finish {
		return fault.New(fault.InvalidConfig, "start time must be before the end time")
	}
	if c.TimeToReward >= c.Finish-c.Start {
		return fault.New(fault.InvalidConfig, "reward duration is greater than active time")
	}

	switch c.Variant {
	case model.VariantNFTToToken:
		if c.Places == 0 {
			return fault.New(fault.InvalidConfig, "value of 'places' cannot be equal to 0")
		}
		if c.IsLimited || c.PrintOnDemand || c.ReturnEntry || c.Filler != "" {
			return fault.New(fault.InvalidConfig, "pool flags are only valid for tokentonft campaigns")
		}
	case model.VariantTokenToNFT:
		if c.Filler == "" {
			return fault.New(fault.InvalidConfig, "tokentonft campaigns require a filler account")
		}
		if c.IsLimited == c.PrintOnDemand {
			return fault.New(fault.InvalidConfig, "select exactly one of 'is_limited' or 'print_on_demand'")
		}
		if c.PrintOnDemand && c.Places != 0 {
			return fault.New(fault.InvalidConfig, "places must be 0 (unlimited) when 'print_on_demand' is active")
		}
	default:
		return fault.New(fault.InvalidConfig, "unknown campaign variant %q", c.Variant)
	}
	return nil
}

// GetCampaign returns a campaign by name.
func (e *Engine) GetCampaign(ctx context.Context, name string) (*model.Campaign, error) {
	c, err := e.campaigns.Get(e.db, name)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fault.New(fault.NotFound, "campaign %q does not exist", name)
		}
		return nil, err
	}
	return c, nil
}

// DeleteCampaign removes a campaign record. Dependent staker and reward
// records are not checked; purging them first is the operator's job.
func (e *Engine) DeleteCampaign(ctx context.Context, name string) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := e.campaigns.Get(tx, name)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "campaign %q does not exist", name)
		}
		return err
	}
	if err := e.campaigns.Delete(tx, name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	e.cache.Invalidate(ctx, c.Memo)
	return nil
}

// SetDepositDescriptor configures the metadata triple an arriving unique
// asset must match to join an nfttotoken campaign. Write-once.
func (e *Engine) SetDepositDescriptor(ctx context.Context, d model.DepositDescriptor) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := e.campaigns.Get(tx, d.Campaign)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "there is no campaign with name %q", d.Campaign)
		}
		return err
	}
	if c.Variant != model.VariantNFTToToken {
		return fault.New(fault.InvalidConfig, "campaign %q does not take unique-asset deposits", d.Campaign)
	}

	if err := e.descriptors.Set(tx, &d); err != nil {
		if err == repository.ErrDuplicate {
			return fault.New(fault.AlreadyExists, "campaign %q already has a deposit descriptor", d.Campaign)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteDepositDescriptor removes the descriptor of a campaign.
func (e *Engine) DeleteDepositDescriptor(ctx context.Context, campaign string) error {
	if err := e.descriptors.Delete(e.db, campaign); err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "campaign %q has no deposit descriptor", campaign)
		}
		return err
	}
	return nil
}
