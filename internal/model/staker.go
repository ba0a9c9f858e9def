package model

// Staker is a participant's record of held collateral and reward
// entitlement. One record per participant system-wide. The record is
// mutated exactly once, by claim or retire, and is terminal afterwards.
type Staker struct {
	Participant     string `db:"participant" json:"participant"`
	Campaign        string `db:"campaign" json:"campaign"`
	JoinTime        int64  `db:"join_time" json:"join_time"`
	ClaimableReward int64  `db:"claimable_reward" json:"claimable_reward"`
	Claimed         bool   `db:"claimed" json:"claimed"`
	Retired         bool   `db:"retired" json:"retired"`
	// AssetID holds the locked collateral id for nfttotoken campaigns,
	// or the assigned reward item id for tokentonft campaigns.
	AssetID   int64 `db:"asset_id" json:"asset_id"`
	CreatedAt int64 `db:"created_at" json:"created_at"`
}

// Active reports whether the record can still transition.
func (s *Staker) Active() bool {
	return !s.Claimed && !s.Retired
}

// RewardItem is one unit from a campaign's finite reward pool.
// Pooled: available and not delivered. Assigned: not available.
// Delivered: handed to the claiming staker.
type RewardItem struct {
	ID        int64  `db:"id" json:"id"`
	Campaign  string `db:"campaign" json:"campaign"`
	Available bool   `db:"available" json:"available"`
	Delivered bool   `db:"delivered" json:"delivered"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// DepositDescriptor is the expected metadata triple an arriving unique
// asset must match to join an nfttotoken campaign. One per campaign.
type DepositDescriptor struct {
	Campaign string `db:"campaign" json:"campaign"`
	Author   string `db:"author" json:"author"`
	Category string `db:"category" json:"category"`
	IData    string `db:"idata" json:"idata"`
}

// AssetMetadata is what the unique-asset custody system reports for an
// asset id.
type AssetMetadata struct {
	Author   string `json:"author"`
	Category string `json:"category"`
	IData    string `json:"idata"`
}
