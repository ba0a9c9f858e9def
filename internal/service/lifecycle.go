package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/metrics"
	"github.com/n1platform/stakevault/internal/model"
	"github.com/n1platform/stakevault/internal/repository"
)

// Claim hands the reward bundle to a staker once the lock period has
// elapsed. The staker record becomes terminal; the outbound transfers
// are issued after the state change commits.
func (e *Engine) Claim(ctx context.Context, caller, participant string) error {
	return e.transition(ctx, "claim", caller, participant)
}

// Retire lets a staker leave early, before the claim time is reached,
// recovering their collateral. Terminal like Claim.
func (e *Engine) Retire(ctx context.Context, caller, participant string) error {
	return e.transition(ctx, "retire", caller, participant)
}

func (e *Engine) transition(ctx context.Context, op, caller, participant string) error {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordLifecycleDuration(op, status, time.Since(start).Seconds())
	}()

	if caller != participant {
		return fault.New(fault.Unauthorized, "caller %q may not act for participant %q", caller, participant)
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	staker, err := e.stakers.Get(tx, participant)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "%s is not registered as a participant in any campaign", participant)
		}
		return err
	}
	if !staker.Active() {
		return fault.New(fault.AlreadyParticipated, "already claimed or withdrawn from this campaign")
	}

	now := e.now()
	if op == "claim" && now < staker.ClaimableReward {
		return fault.New(fault.WindowViolation, "you have not completed stake time yet")
	}
	if op == "retire" && now >= staker.ClaimableReward {
		return fault.New(fault.WindowViolation, "stake completed, you must claim your reward")
	}

	campaign, err := e.campaigns.Get(tx, staker.Campaign)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "corresponding campaign %q was not found", staker.Campaign)
		}
		return err
	}

	var transfers []custody.Transfer
	if op == "claim" {
		transfers, err = e.claimTransfers(tx, campaign, staker)
	} else {
		transfers, err = e.retireTransfers(tx, campaign, staker)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	status = "success"

	e.dispatch(ctx, transfers)
	return nil
}

func (e *Engine) claimTransfers(tx *sqlx.Tx, campaign *model.Campaign, staker *model.Staker) ([]custody.Transfer, error) {
	var transfers []custody.Transfer

	switch campaign.Variant {
	case model.VariantNFTToToken:
		transfers = append(transfers,
			custody.Transfer{
				System:   campaign.NFTAccount,
				To:       staker.Participant,
				Kind:     custody.KindNFT,
				AssetIDs: []int64{staker.AssetID},
				Note:     "NFT returned",
			},
			custody.Transfer{
				System: campaign.TokenAccount,
				To:     staker.Participant,
				Kind:   custody.KindToken,
				Amount: campaign.Asset(),
				Note:   "Tokens claimed",
			})
		if err := e.stakers.MarkClaimed(tx, staker.Participant); err != nil {
			return nil, err
		}

	case model.VariantTokenToNFT:
		if campaign.PrintOnDemand {
			return nil, fault.New(fault.Unsupported, "print-on-demand claim is not implemented")
		}
		if !campaign.IsLimited {
			return nil, fault.New(fault.InvalidConfig, "the campaign has no valid configuration")
		}
		transfers = append(transfers, custody.Transfer{
			System:   campaign.NFTAccount,
			To:       staker.Participant,
			Kind:     custody.KindNFT,
			AssetIDs: []int64{staker.AssetID},
			Note:     "NFT claimed",
		})
		if campaign.ReturnEntry {
			transfers = append(transfers, custody.Transfer{
				System: campaign.TokenAccount,
				To:     staker.Participant,
				Kind:   custody.KindToken,
				Amount: campaign.Asset(),
				Note:   "Returned entry",
			})
		}
		if err := e.stakers.MarkClaimed(tx, staker.Participant); err != nil {
			return nil, err
		}
		if err := e.rewards.MarkDelivered(tx, staker.AssetID); err != nil {
			if err == repository.ErrNotFound {
				return nil, fault.New(fault.NotFound, "no corresponding entry was found in the reward pool")
			}
			return nil, err
		}

	default:
		return nil, fault.New(fault.InvalidConfig, "the campaign has no valid configuration")
	}
	return transfers, nil
}

func (e *Engine) retireTransfers(tx *sqlx.Tx, campaign *model.Campaign, staker *model.Staker) ([]custody.Transfer, error) {
	var transfers []custody.Transfer

	switch campaign.Variant {
	case model.VariantNFTToToken:
		transfers = append(transfers, custody.Transfer{
			System:   campaign.NFTAccount,
			To:       staker.Participant,
			Kind:     custody.KindNFT,
			AssetIDs: []int64{staker.AssetID},
			Note:     "NFT returned",
		})
		if err := e.stakers.MarkRetired(tx, staker.Participant); err != nil {
			return nil, err
		}

	case model.VariantTokenToNFT:
		transfers = append(transfers, custody.Transfer{
			System: campaign.TokenAccount,
			To:     staker.Participant,
			Kind:   custody.KindToken,
			Amount: campaign.Asset(),
			Note:   "Returned entry",
		})
		if err := e.stakers.MarkRetired(tx, staker.Participant); err != nil {
			return nil, err
		}
		// Released items go back to the pool for the next joiner.
		if err := e.rewards.Release(tx, staker.AssetID); err != nil {
			return nil, err
		}

	default:
		return nil, fault.New(fault.InvalidConfig, "the campaign has no valid configuration")
	}
	return transfers, nil
}

// GetStaker returns a participant's record.
func (e *Engine) GetStaker(ctx context.Context, participant string) (*model.Staker, error) {
	s, err := e.stakers.Get(e.db, participant)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fault.New(fault.NotFound, "%s is not registered as a participant in any campaign", participant)
		}
		return nil, err
	}
	return s, nil
}
