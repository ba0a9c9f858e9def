package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/metrics"
	"github.com/n1platform/stakevault/internal/model"
	"github.com/n1platform/stakevault/internal/repository"
)

// HandleDeposit is the single entry point for asset-arrival
// notifications. It resolves the memo to a campaign, verifies sender and
// timing, and routes to the join or reward-stocking path. Any failed
// precondition aborts the whole operation with no partial mutation; a
// rejected deposit is never compensated, custody keeps the asset.
func (e *Engine) HandleDeposit(ctx context.Context, ev custody.DepositEvent) error {
	if ev.To != e.account {
		// Not addressed to this engine; custody fans notifications out.
		return nil
	}

	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordDepositDuration(string(ev.Kind), status, time.Since(start).Seconds())
	}()

	memo, err := strconv.ParseUint(ev.Memo, 10, 63)
	if err != nil || memo == 0 {
		return fault.New(fault.InvalidConfig, "memo %q is not a valid campaign reference", ev.Memo)
	}

	campaign, err := e.campaignByMemo(ctx, int64(memo))
	if err != nil {
		return err
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch ev.Kind {
	case custody.KindNFT:
		if ev.SourceSystem != campaign.NFTAccount {
			return fault.New(fault.IdentityMismatch, "unexpected issuer contract %q", ev.SourceSystem)
		}
		switch campaign.Variant {
		case model.VariantNFTToToken:
			err = e.joinWithNFT(ctx, tx, campaign, ev)
		case model.VariantTokenToNFT:
			err = e.stockReward(tx, campaign, ev)
		}
	case custody.KindToken:
		if campaign.Variant != model.VariantTokenToNFT {
			return fault.New(fault.IdentityMismatch, "campaign %q does not accept token deposits", campaign.Name)
		}
		if ev.SourceSystem != campaign.TokenAccount {
			return fault.New(fault.IdentityMismatch, "unexpected token contract %q", ev.SourceSystem)
		}
		err = e.joinWithToken(tx, campaign, ev)
	default:
		return fault.New(fault.InvalidConfig, "unknown payload kind %q", ev.Kind)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	status = "success"
	return nil
}

// campaignByMemo resolves a campaign through the cache when enabled,
// falling back to the unique memo index. Campaigns are immutable, so a
// cached record is as good as a fresh read until deletion.
func (e *Engine) campaignByMemo(ctx context.Context, memo int64) (*model.Campaign, error) {
	if c, ok := e.cache.GetByMemo(ctx, memo); ok {
		return c, nil
	}
	c, err := e.campaigns.GetByMemo(e.db, memo)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fault.New(fault.NotFound, "no campaign matches memo %d", memo)
		}
		return nil, err
	}
	e.cache.SetByMemo(ctx, c)
	return c, nil
}

// joinWithNFT admits a participant into an nfttotoken campaign: the
// arriving unique asset is the collateral.
func (e *Engine) joinWithNFT(ctx context.Context, tx *sqlx.Tx, campaign *model.Campaign, ev custody.DepositEvent) error {
	now := e.now()
	if now <= campaign.Start {
		return fault.New(fault.WindowViolation, "campaign has not yet started")
	}
	if now >= campaign.Finish {
		return fault.New(fault.WindowViolation, "this campaign has already ended")
	}

	if len(ev.AssetIDs) != 1 {
		return fault.New(fault.InvalidConfig, "only one asset id was expected, got %d", len(ev.AssetIDs))
	}
	assetID := ev.AssetIDs[0]

	descriptor, err := e.descriptors.Get(tx, campaign.Name)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.NotFound, "campaign %q has no deposit descriptor", campaign.Name)
		}
		return err
	}

	meta, err := e.assets.AssetMetadata(ctx, campaign.NFTAccount, assetID)
	if err != nil {
		if err == custody.ErrAssetNotFound {
			return fault.New(fault.NotFound, "asset %d was not found in custody", assetID)
		}
		return fmt.Errorf("failed to look up asset metadata: %w", err)
	}
	if meta.Author != descriptor.Author {
		return fault.New(fault.IdentityMismatch, "the 'author' data do not match")
	}
	if meta.Category != descriptor.Category {
		return fault.New(fault.IdentityMismatch, "the 'category' data do not match")
	}
	if meta.IData != descriptor.IData {
		return fault.New(fault.IdentityMismatch, "the 'idata' data do not match")
	}

	if _, err := e.stakers.Get(tx, ev.From); err == nil {
		return fault.New(fault.AlreadyParticipated, "%s is already participating or has participated", ev.From)
	} else if err != repository.ErrNotFound {
		return err
	}

	used, err := e.stakers.AssetUsed(tx, assetID)
	if err != nil {
		return err
	}
	if used {
		return fault.New(fault.AlreadyParticipated, "asset %d has already participated", assetID)
	}

	count, err := e.stakers.CountByCampaign(tx, campaign.Name)
	if err != nil {
		return err
	}
	if count >= campaign.Places {
		return fault.New(fault.CapacityExceeded, "there are no places left for this campaign")
	}

	staker := &model.Staker{
		Participant:     ev.From,
		Campaign:        campaign.Name,
		JoinTime:        now,
		ClaimableReward: now + campaign.TimeToReward,
		AssetID:         assetID,
		CreatedAt:       now,
	}
	if err := e.stakers.Insert(tx, staker); err != nil {
		if err == repository.ErrDuplicate {
			return fault.New(fault.AlreadyParticipated, "%s is already participating or has participated", ev.From)
		}
		return err
	}
	return nil
}

// stockReward accepts a unique asset from the filler account into a
// tokentonft campaign's pool. The pool closes once the campaign opens.
func (e *Engine) stockReward(tx *sqlx.Tx, campaign *model.Campaign, ev custody.DepositEvent) error {
	if campaign.PrintOnDemand {
		return fault.New(fault.Unsupported, "print-on-demand campaigns take no reward stock")
	}

	now := e.now()
	if now >= campaign.Start {
		return fault.New(fault.WindowViolation, "the campaign has already started")
	}

	if ev.From != campaign.Filler {
		return fault.New(fault.IdentityMismatch, "value in 'from' does not match the campaign filler")
	}

	count, err := e.rewards.CountByCampaign(tx, campaign.Name)
	if err != nil {
		return err
	}
	if count >= campaign.Places {
		return fault.New(fault.CapacityExceeded, "limit of rewards for this campaign has been reached")
	}

	id, err := concatAssetIDs(ev.AssetIDs)
	if err != nil {
		return err
	}
	item := &model.RewardItem{
		ID:        id,
		Campaign:  campaign.Name,
		Available: true,
		CreatedAt: now,
	}
	if err := e.rewards.Insert(tx, item); err != nil {
		if err == repository.ErrDuplicate {
			return fault.New(fault.AlreadyExists, "reward item %d is already pooled", id)
		}
		return err
	}
	return nil
}

// concatAssetIDs folds the payload's ids into one identifier by decimal
// concatenation. The payload is expected to carry exactly one id in
// practice, in which case this is the identity.
func concatAssetIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, fault.New(fault.InvalidConfig, "deposit carried no asset ids")
	}
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	id, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return 0, fault.New(fault.InvalidConfig, "asset ids do not form a valid identifier")
	}
	return id, nil
}

// joinWithToken admits a participant into a tokentonft campaign: the
// entry amount buys a reservation of one pooled reward item. When the
// pool is empty the deposit is rejected after custody has already taken
// the tokens; there is no compensating refund. Known gap, kept visible.
func (e *Engine) joinWithToken(tx *sqlx.Tx, campaign *model.Campaign, ev custody.DepositEvent) error {
	now := e.now()
	if now < campaign.Start {
		return fault.New(fault.WindowViolation, "campaign has not yet started")
	}
	if now > campaign.Finish {
		return fault.New(fault.WindowViolation, "this campaign has already ended")
	}

	if !ev.Quantity.Equal(campaign.Asset()) {
		return fault.New(fault.IdentityMismatch, "number of tokens does not match the specified entry")
	}

	if campaign.PrintOnDemand {
		return fault.New(fault.Unsupported, "print-on-demand joins are not implemented")
	}

	if _, err := e.stakers.Get(tx, ev.From); err == nil {
		return fault.New(fault.AlreadyParticipated, "%s is already participating or has participated", ev.From)
	} else if err != repository.ErrNotFound {
		return err
	}

	// Finding the first pooled item and marking it assigned is one
	// statement; two queued joins can never reserve the same item.
	rewardID, err := e.rewards.AssignFirstPooled(tx, campaign.Name)
	if err != nil {
		if err == repository.ErrNotFound {
			return fault.New(fault.CapacityExceeded, "no reward was found available for this campaign")
		}
		return err
	}

	staker := &model.Staker{
		Participant:     ev.From,
		Campaign:        campaign.Name,
		JoinTime:        now,
		ClaimableReward: now + campaign.TimeToReward,
		AssetID:         rewardID,
		CreatedAt:       now,
	}
	if err := e.stakers.Insert(tx, staker); err != nil {
		if err == repository.ErrDuplicate {
			return fault.New(fault.AlreadyParticipated, "%s is already participating or has participated", ev.From)
		}
		return err
	}
	return nil
}
