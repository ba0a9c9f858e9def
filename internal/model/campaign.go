package model

// Variant selects which asset kind is the deposit and which is the reward.
type Variant string

const (
	// VariantNFTToToken: participants lock a unique asset and claim a
	// fungible reward.
	VariantNFTToToken Variant = "nfttotoken"
	// VariantTokenToNFT: participants pay a fungible entry and claim a
	// unique asset from a pre-filled pool.
	VariantTokenToNFT Variant = "tokentonft"
)

// Amount is a fungible asset quantity with its kind tag.
type Amount struct {
	Quantity int64  `json:"quantity"`
	Symbol   string `json:"symbol"`
}

// Equal reports whether both quantity and symbol match exactly.
func (a Amount) Equal(b Amount) bool {
	return a.Quantity == b.Quantity && a.Symbol == b.Symbol
}

// Campaign is a time-bounded staking offer. Records are immutable once
// created; there is no update path, only deletion.
type Campaign struct {
	Name          string  `db:"name" json:"name"`
	Variant       Variant `db:"variant" json:"variant"`
	Filler        string  `db:"filler" json:"filler,omitempty"`
	Start         int64   `db:"start_at" json:"start"`
	Finish        int64   `db:"finish_at" json:"finish"`
	TimeToReward  int64   `db:"time_to_reward" json:"time_to_reward"`
	NFTAccount    string  `db:"nft_account" json:"nft_account"`
	TokenAccount  string  `db:"token_account" json:"token_account"`
	AssetQuantity int64   `db:"asset_quantity" json:"asset_quantity"`
	AssetSymbol   string  `db:"asset_symbol" json:"asset_symbol"`
	ReturnEntry   bool    `db:"return_entry" json:"return_entry"`
	Places        int64   `db:"places" json:"places"`
	IsLimited     bool    `db:"is_limited" json:"is_limited"`
	PrintOnDemand bool    `db:"print_on_demand" json:"print_on_demand"`
	Memo          int64   `db:"memo" json:"memo"`
	CreatedAt     int64   `db:"created_at" json:"created_at"`
}

// Asset returns the campaign's configured fungible amount: the reward for
// nfttotoken campaigns, the entry price for tokentonft campaigns.
func (c *Campaign) Asset() Amount {
	return Amount{Quantity: c.AssetQuantity, Symbol: c.AssetSymbol}
}
