package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/n1platform/stakevault/internal/model"
)

// Bus implements Sender and MetadataSource over NATS. Transfers are
// plain publishes on custody.<system>.transfer; metadata lookups use
// request-reply on custody.<system>.assets.
type Bus struct {
	conn           *nats.Conn
	engineAccount  string
	requestTimeout time.Duration
}

// NewBus creates a custody bus bound to the engine's own account name.
func NewBus(conn *nats.Conn, engineAccount string, requestTimeout time.Duration) *Bus {
	return &Bus{
		conn:           conn,
		engineAccount:  engineAccount,
		requestTimeout: requestTimeout,
	}
}

type transferMessage struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Kind     AssetKind    `json:"kind"`
	AssetIDs []int64      `json:"asset_ids,omitempty"`
	Amount   model.Amount `json:"amount"`
	Note     string       `json:"note"`
}

// Send publishes the transfer and returns without waiting for any
// confirmation.
func (b *Bus) Send(_ context.Context, t Transfer) error {
	msg := transferMessage{
		From:     b.engineAccount,
		To:       t.To,
		Kind:     t.Kind,
		AssetIDs: t.AssetIDs,
		Amount:   t.Amount,
		Note:     t.Note,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode transfer: %w", err)
	}
	subject := fmt.Sprintf("custody.%s.transfer", t.System)
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish transfer: %w", err)
	}
	return nil
}

type assetQuery struct {
	ID int64 `json:"id"`
}

type assetReply struct {
	Found    bool   `json:"found"`
	Author   string `json:"author"`
	Category string `json:"category"`
	IData    string `json:"idata"`
}

// AssetMetadata asks the unique-asset custody for the metadata triple of
// an asset id.
func (b *Bus) AssetMetadata(ctx context.Context, system string, id int64) (*model.AssetMetadata, error) {
	data, err := json.Marshal(assetQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to encode asset query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	subject := fmt.Sprintf("custody.%s.assets", system)
	msg, err := b.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset metadata: %w", err)
	}

	var reply assetReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode asset metadata: %w", err)
	}
	if !reply.Found {
		return nil, ErrAssetNotFound
	}
	return &model.AssetMetadata{
		Author:   reply.Author,
		Category: reply.Category,
		IData:    reply.IData,
	}, nil
}
