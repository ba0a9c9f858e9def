package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/database"
	"github.com/n1platform/stakevault/internal/model"
)

// testClock is a second-granularity clock the tests move by hand.
type testClock struct {
	now int64
}

func (c *testClock) time() time.Time {
	return time.Unix(c.now, 0)
}

// fakeCustody implements both custody interfaces: it records outbound
// transfers and serves asset metadata from a map.
type fakeCustody struct {
	mu      sync.Mutex
	assets  map[int64]model.AssetMetadata
	sent    []custody.Transfer
	sendErr error
}

func (f *fakeCustody) Send(_ context.Context, t custody.Transfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, t)
	return nil
}

func (f *fakeCustody) AssetMetadata(_ context.Context, _ string, id int64) (*model.AssetMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if meta, ok := f.assets[id]; ok {
		return &meta, nil
	}
	return nil, custody.ErrAssetNotFound
}

func (f *fakeCustody) transfers() []custody.Transfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]custody.Transfer, len(f.sent))
	copy(out, f.sent)
	return out
}

type testEnv struct {
	engine  *Engine
	db      *sqlx.DB
	custody *fakeCustody
	clock   *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or each pool conn would see its own :memory: DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	fc := &fakeCustody{assets: make(map[int64]model.AssetMetadata)}
	clock := &testClock{now: 50}
	engine := NewEngine(db, fc, fc, "stakevault", WithClock(clock.time))

	return &testEnv{engine: engine, db: db, custody: fc, clock: clock}
}

// campaignA is the nfttotoken fixture from the acceptance scenarios:
// start=100, finish=10000, timetoreward=500, places=2, memo=42.
func campaignA() model.Campaign {
	return model.Campaign{
		Name:          "c1",
		Variant:       model.VariantNFTToToken,
		Start:         100,
		Finish:        10000,
		TimeToReward:  500,
		NFTAccount:    "simpleassets",
		TokenAccount:  "niceonetoken",
		AssetQuantity: 100,
		AssetSymbol:   "NICE",
		Places:        2,
		Memo:          42,
	}
}

// campaignB is a limited tokentonft fixture with a one-item pool bound.
func campaignB() model.Campaign {
	return model.Campaign{
		Name:          "pool1",
		Variant:       model.VariantTokenToNFT,
		Filler:        "filler",
		Start:         100,
		Finish:        10000,
		TimeToReward:  500,
		NFTAccount:    "simpleassets",
		TokenAccount:  "niceonetoken",
		AssetQuantity: 10,
		AssetSymbol:   "NICE",
		Places:        1,
		IsLimited:     true,
		Memo:          77,
	}
}

func (env *testEnv) create(t *testing.T, c model.Campaign) {
	t.Helper()
	require.NoError(t, env.engine.CreateCampaign(context.Background(), c))
}

// addAsset registers metadata in the fake custody matching the default
// descriptor triple.
func (env *testEnv) addAsset(id int64) {
	env.custody.assets[id] = model.AssetMetadata{
		Author:   "author1",
		Category: "cat1",
		IData:    "data1",
	}
}

// setDescriptor installs the default descriptor triple for a campaign.
func (env *testEnv) setDescriptor(t *testing.T, campaign string) {
	t.Helper()
	require.NoError(t, env.engine.SetDepositDescriptor(context.Background(), model.DepositDescriptor{
		Campaign: campaign,
		Author:   "author1",
		Category: "cat1",
		IData:    "data1",
	}))
}

func nftDeposit(from string, id int64, memo int64) custody.DepositEvent {
	return custody.DepositEvent{
		SourceSystem: "simpleassets",
		From:         from,
		To:           "stakevault",
		Kind:         custody.KindNFT,
		AssetIDs:     []int64{id},
		Memo:         strconv.FormatInt(memo, 10),
	}
}

func tokenDeposit(from string, quantity int64, memo int64) custody.DepositEvent {
	return custody.DepositEvent{
		SourceSystem: "niceonetoken",
		From:         from,
		To:           "stakevault",
		Kind:         custody.KindToken,
		Quantity:     model.Amount{Quantity: quantity, Symbol: "NICE"},
		Memo:         strconv.FormatInt(memo, 10),
	}
}
