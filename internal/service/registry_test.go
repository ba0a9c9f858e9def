package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/model"
)

func TestCreateCampaign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.create(t, campaignA())

	got, err := env.engine.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Memo)
	assert.Equal(t, model.VariantNFTToToken, got.Variant)
	assert.Equal(t, int64(50), got.CreatedAt)
}

func TestCreateCampaignDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, campaignA())

	dup := campaignA()
	dup.Memo = 43
	err := env.engine.CreateCampaign(context.Background(), dup)
	assert.True(t, fault.Is(err, fault.AlreadyExists))
}

func TestCreateCampaignDuplicateMemo(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, campaignA())

	dup := campaignA()
	dup.Name = "c2"
	err := env.engine.CreateCampaign(context.Background(), dup)
	assert.True(t, fault.Is(err, fault.AlreadyExists))
}

func TestCreateCampaignInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*model.Campaign)
	}{
		{"zero memo", func(c *model.Campaign) { c.Memo = 0 }},
		{"start in the past", func(c *model.Campaign) { c.Start = 10 }},
		{"start after finish", func(c *model.Campaign) { c.Start = 10000; c.Finish = 100 }},
		{"start equals finish", func(c *model.Campaign) { c.Finish = c.Start }},
		{"reward time too long", func(c *model.Campaign) { c.TimeToReward = 9900 }},
		{"zero places", func(c *model.Campaign) { c.Places = 0 }},
		{"pool flags on nfttotoken", func(c *model.Campaign) { c.IsLimited = true }},
		{"missing custody account", func(c *model.Campaign) { c.NFTAccount = "" }},
		{"unknown variant", func(c *model.Campaign) { c.Variant = "other" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := campaignA()
			tc.mutate(&c)
			err := env.engine.CreateCampaign(ctx, c)
			assert.True(t, fault.Is(err, fault.InvalidConfig), "got %v", err)
		})
	}
}

func TestCreateCampaignPoolFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	both := campaignB()
	both.PrintOnDemand = true
	err := env.engine.CreateCampaign(ctx, both)
	assert.True(t, fault.Is(err, fault.InvalidConfig))

	neither := campaignB()
	neither.IsLimited = false
	err = env.engine.CreateCampaign(ctx, neither)
	assert.True(t, fault.Is(err, fault.InvalidConfig))

	onDemandWithPlaces := campaignB()
	onDemandWithPlaces.IsLimited = false
	onDemandWithPlaces.PrintOnDemand = true
	onDemandWithPlaces.Places = 5
	err = env.engine.CreateCampaign(ctx, onDemandWithPlaces)
	assert.True(t, fault.Is(err, fault.InvalidConfig))

	onDemand := campaignB()
	onDemand.IsLimited = false
	onDemand.PrintOnDemand = true
	onDemand.Places = 0
	assert.NoError(t, env.engine.CreateCampaign(ctx, onDemand))
}

func TestDeleteCampaign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())

	require.NoError(t, env.engine.DeleteCampaign(ctx, "c1"))

	_, err := env.engine.GetCampaign(ctx, "c1")
	assert.True(t, fault.Is(err, fault.NotFound))

	err = env.engine.DeleteCampaign(ctx, "c1")
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestDepositDescriptorLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, campaignA())

	env.setDescriptor(t, "c1")

	err := env.engine.SetDepositDescriptor(ctx, model.DepositDescriptor{
		Campaign: "c1", Author: "x", Category: "y", IData: "z",
	})
	assert.True(t, fault.Is(err, fault.AlreadyExists))

	require.NoError(t, env.engine.DeleteDepositDescriptor(ctx, "c1"))
	err = env.engine.DeleteDepositDescriptor(ctx, "c1")
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestDescriptorRequiresCampaign(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.SetDepositDescriptor(context.Background(), model.DepositDescriptor{
		Campaign: "ghost", Author: "a", Category: "b", IData: "c",
	})
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestDescriptorRejectedForPoolCampaign(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, campaignB())

	err := env.engine.SetDepositDescriptor(context.Background(), model.DepositDescriptor{
		Campaign: "pool1", Author: "a", Category: "b", IData: "c",
	})
	assert.True(t, fault.Is(err, fault.InvalidConfig))
}
