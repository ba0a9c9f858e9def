package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/fault"
)

// joinA runs the acceptance fixture: campaign c1 with start=100,
// finish=10000, timetoreward=500, places=2, memo=42.
func joinA(t *testing.T, env *testEnv, participant string, assetID int64, now int64) {
	t.Helper()
	env.addAsset(assetID)
	env.clock.now = now
	require.NoError(t, env.engine.HandleDeposit(context.Background(), nftDeposit(participant, assetID, 42)))
}

func TestRetireBeforeClaimTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())
	env.setDescriptor(t, "c1")
	joinA(t, env, "p1", 7, 150)

	env.clock.now = 400
	require.NoError(t, env.engine.Retire(ctx, "p1", "p1"))

	staker, err := env.engine.GetStaker(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, staker.Retired)
	assert.False(t, staker.Claimed)

	// Collateral comes back, nothing else.
	transfers := env.custody.transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, custody.KindNFT, transfers[0].Kind)
	assert.Equal(t, []int64{7}, transfers[0].AssetIDs)
	assert.Equal(t, "p1", transfers[0].To)

	// The record is terminal.
	err = env.engine.Retire(ctx, "p1", "p1")
	assert.True(t, fault.Is(err, fault.AlreadyParticipated))
}

func TestClaimAfterStakeTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())
	env.setDescriptor(t, "c1")
	joinA(t, env, "p2", 8, 200)

	staker, err := env.engine.GetStaker(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, int64(700), staker.ClaimableReward)

	env.clock.now = 650
	err = env.engine.Claim(ctx, "p2", "p2")
	assert.True(t, fault.Is(err, fault.WindowViolation))

	env.clock.now = 700
	require.NoError(t, env.engine.Claim(ctx, "p2", "p2"))

	staker, err = env.engine.GetStaker(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, staker.Claimed)
	assert.False(t, staker.Retired)

	// Collateral back plus the token reward.
	transfers := env.custody.transfers()
	require.Len(t, transfers, 2)
	assert.Equal(t, custody.KindNFT, transfers[0].Kind)
	assert.Equal(t, custody.KindToken, transfers[1].Kind)
	assert.Equal(t, int64(100), transfers[1].Amount.Quantity)

	err = env.engine.Claim(ctx, "p2", "p2")
	assert.True(t, fault.Is(err, fault.AlreadyParticipated))
}

func TestRetireAfterStakeTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())
	env.setDescriptor(t, "c1")
	joinA(t, env, "p1", 7, 150)

	env.clock.now = 650
	err := env.engine.Retire(ctx, "p1", "p1")
	assert.True(t, fault.Is(err, fault.WindowViolation))
	assert.Empty(t, env.custody.transfers())
}

func TestLifecycleUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())
	env.setDescriptor(t, "c1")
	joinA(t, env, "p1", 7, 150)

	err := env.engine.Claim(ctx, "mallory", "p1")
	assert.True(t, fault.Is(err, fault.Unauthorized))
	err = env.engine.Retire(ctx, "mallory", "p1")
	assert.True(t, fault.Is(err, fault.Unauthorized))
}

func TestLifecycleUnknownParticipant(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.Claim(context.Background(), "ghost", "ghost")
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestClaimPoolReward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignB())
	env.clock.now = 60
	require.NoError(t, env.engine.HandleDeposit(ctx, nftDeposit("filler", 500, 77)))
	env.clock.now = 200
	require.NoError(t, env.engine.HandleDeposit(ctx, tokenDeposit("p1", 10, 77)))

	env.clock.now = 700
	require.NoError(t, env.engine.Claim(ctx, "p1", "p1"))

	// Without return_entry only the reward item moves out.
	transfers := env.custody.transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, custody.KindNFT, transfers[0].Kind)
	assert.Equal(t, []int64{500}, transfers[0].AssetIDs)
}

func TestClaimPoolRewardWithReturnEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := campaignB()
	c.ReturnEntry = true
	env.create(t, c)
	env.clock.now = 60
	require.NoError(t, env.engine.HandleDeposit(ctx, nftDeposit("filler", 500, 77)))
	env.clock.now = 200
	require.NoError(t, env.engine.HandleDeposit(ctx, tokenDeposit("p1", 10, 77)))

	env.clock.now = 700
	require.NoError(t, env.engine.Claim(ctx, "p1", "p1"))

	transfers := env.custody.transfers()
	require.Len(t, transfers, 2)
	assert.Equal(t, custody.KindNFT, transfers[0].Kind)
	assert.Equal(t, custody.KindToken, transfers[1].Kind)
	assert.Equal(t, int64(10), transfers[1].Amount.Quantity)
}

func TestRetireReleasesRewardItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignB())
	env.clock.now = 60
	require.NoError(t, env.engine.HandleDeposit(ctx, nftDeposit("filler", 500, 77)))
	env.clock.now = 200
	require.NoError(t, env.engine.HandleDeposit(ctx, tokenDeposit("p1", 10, 77)))

	env.clock.now = 400
	require.NoError(t, env.engine.Retire(ctx, "p1", "p1"))

	// Entry comes back and the item returns to the pool.
	transfers := env.custody.transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, custody.KindToken, transfers[0].Kind)
	assert.Equal(t, int64(10), transfers[0].Amount.Quantity)

	// The released item is assignable to the next joiner.
	require.NoError(t, env.engine.HandleDeposit(ctx, tokenDeposit("p2", 10, 77)))
	staker, err := env.engine.GetStaker(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(500), staker.AssetID)
}

func TestClaimPrintOnDemandUnsupported(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := campaignB()
	c.Name = "ondemand"
	c.Memo = 78
	c.IsLimited = false
	c.PrintOnDemand = true
	c.Places = 0
	env.create(t, c)

	// Print-on-demand has no stocked pool, so fabricate the staker the
	// way a minting join eventually would.
	env.clock.now = 200
	_, err := env.db.Exec(env.db.Rebind(
		`INSERT INTO stakers (participant, campaign, join_time, claimable_reward,
			claimed, retired, asset_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		"p1", "ondemand", int64(200), int64(700), false, false, int64(0), int64(200))
	require.NoError(t, err)

	env.clock.now = 700
	err = env.engine.Claim(ctx, "p1", "p1")
	assert.True(t, fault.Is(err, fault.Unsupported))

	// Nothing committed, nothing sent.
	staker, gerr := env.engine.GetStaker(ctx, "p1")
	require.NoError(t, gerr)
	assert.True(t, staker.Active())
	assert.Empty(t, env.custody.transfers())
}

func TestFailedClaimSendsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignB())
	env.clock.now = 60
	require.NoError(t, env.engine.HandleDeposit(ctx, nftDeposit("filler", 500, 77)))
	env.clock.now = 200
	require.NoError(t, env.engine.HandleDeposit(ctx, tokenDeposit("p1", 10, 77)))

	// Campaign vanishes underneath the staker.
	require.NoError(t, env.engine.DeleteCampaign(ctx, "pool1"))

	env.clock.now = 700
	err := env.engine.Claim(ctx, "p1", "p1")
	assert.True(t, fault.Is(err, fault.NotFound))
	assert.Empty(t, env.custody.transfers())

	staker, gerr := env.engine.GetStaker(ctx, "p1")
	require.NoError(t, gerr)
	assert.True(t, staker.Active())
}
