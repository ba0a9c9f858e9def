// Package custody is the boundary to the two asset-custody systems: the
// unique-asset (NFT) custody and the fungible-token custody. Deposits
// arrive as tagged events; outbound transfers are one-way, unconfirmed
// dispatches. The engine never depends on a send's outcome.
package custody

import (
	"context"
	"errors"

	"github.com/n1platform/stakevault/internal/model"
)

// AssetKind tags which custody system a payload belongs to.
type AssetKind string

const (
	KindNFT   AssetKind = "nft"
	KindToken AssetKind = "token"
)

// DepositEvent is an asset-arrival notification. Exactly one of AssetIDs
// and Quantity is meaningful, selected by Kind.
type DepositEvent struct {
	SourceSystem string       `json:"source_system"`
	From         string       `json:"from"`
	To           string       `json:"to"`
	Kind         AssetKind    `json:"kind"`
	AssetIDs     []int64      `json:"asset_ids,omitempty"`
	Quantity     model.Amount `json:"quantity"`
	Memo         string       `json:"memo"`
}

// Transfer is an outbound asset movement from the engine's own account.
type Transfer struct {
	System   string       `json:"system"`
	To       string       `json:"to"`
	Kind     AssetKind    `json:"kind"`
	AssetIDs []int64      `json:"asset_ids,omitempty"`
	Amount   model.Amount `json:"amount"`
	Note     string       `json:"note"`
}

// Sender dispatches outbound transfers, fire-and-forget.
type Sender interface {
	Send(ctx context.Context, t Transfer) error
}

// MetadataSource looks up what the unique-asset custody knows about an
// asset id.
type MetadataSource interface {
	AssetMetadata(ctx context.Context, system string, id int64) (*model.AssetMetadata, error)
}

// ErrAssetNotFound is returned by a MetadataSource when the custody
// system has no record of the asset id.
var ErrAssetNotFound = errors.New("asset not found in custody")
