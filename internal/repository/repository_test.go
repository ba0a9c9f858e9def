package repository

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/n1platform/stakevault/internal/database"
	"github.com/n1platform/stakevault/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCampaignMemoUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	repo := NewCampaignRepository()

	first := &model.Campaign{Name: "a", Variant: model.VariantNFTToToken,
		Start: 100, Finish: 200, NFTAccount: "n", TokenAccount: "t",
		AssetSymbol: "NICE", Places: 1, Memo: 42}
	require.NoError(t, repo.Create(db, first))

	second := *first
	second.Name = "b"
	assert.Equal(t, ErrDuplicate, repo.Create(db, &second))

	second.Memo = 43
	require.NoError(t, repo.Create(db, &second))

	got, err := repo.GetByMemo(db, 43)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = repo.GetByMemo(db, 99)
	assert.Equal(t, ErrNotFound, err)
}

func TestStakerTerminalGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewStakerRepository()

	s := &model.Staker{Participant: "p1", Campaign: "c", JoinTime: 1,
		ClaimableReward: 10, AssetID: 7}
	require.NoError(t, repo.Insert(db, s))

	require.NoError(t, repo.MarkClaimed(db, "p1"))

	// A terminal record refuses any further transition.
	assert.Equal(t, ErrNotFound, repo.MarkClaimed(db, "p1"))
	assert.Equal(t, ErrNotFound, repo.MarkRetired(db, "p1"))

	got, err := repo.Get(db, "p1")
	require.NoError(t, err)
	assert.True(t, got.Claimed)
	assert.False(t, got.Retired)
}

func TestStakerAssetUsed(t *testing.T) {
	db := newTestDB(t)
	repo := NewStakerRepository()

	require.NoError(t, repo.Insert(db, &model.Staker{
		Participant: "p1", Campaign: "c", AssetID: 7}))

	used, err := repo.AssetUsed(db, 7)
	require.NoError(t, err)
	assert.True(t, used)

	used, err = repo.AssetUsed(db, 8)
	require.NoError(t, err)
	assert.False(t, used)
}

func TestAssignFirstPooledOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewRewardRepository()

	for i, id := range []int64{30, 10, 20} {
		require.NoError(t, repo.Insert(db, &model.RewardItem{
			ID: id, Campaign: "c", Available: true, CreatedAt: int64(i)}))
	}

	// Oldest first, then id.
	id, err := repo.AssignFirstPooled(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(30), id)

	id, err = repo.AssignFirstPooled(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)

	require.NoError(t, repo.Release(db, 30))
	id, err = repo.AssignFirstPooled(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(30), id)

	id, err = repo.AssignFirstPooled(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)

	_, err = repo.AssignFirstPooled(db, "c")
	assert.Equal(t, ErrNotFound, err)
}

func TestRewardPurgeCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRewardRepository()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, repo.Insert(db, &model.RewardItem{
			ID: id, Campaign: "c", Available: true}))
	}
	require.NoError(t, repo.Insert(db, &model.RewardItem{
		ID: 9, Campaign: "other", Available: true}))

	deleted, err := repo.PurgeByCampaign(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	deleted, err = repo.PurgeByCampaign(db, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	count, err := repo.CountByCampaign(db, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
