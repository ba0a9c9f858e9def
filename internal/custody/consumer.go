package custody

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DepositHandler consumes a deposit event atomically: either the whole
// operation commits or no state changes at all.
type DepositHandler interface {
	HandleDeposit(ctx context.Context, ev DepositEvent) error
}

// Consumer subscribes to the custody deposit subjects and feeds the
// deposit matcher. A rejected deposit is logged and dropped; custody has
// already moved the asset, so there is nothing to retry.
type Consumer struct {
	conn         *nats.Conn
	handler      DepositHandler
	nftSubject   string
	tokenSubject string
	timeout      time.Duration
	subs         []*nats.Subscription
}

// NewConsumer creates a consumer for the two deposit subjects.
func NewConsumer(conn *nats.Conn, handler DepositHandler, nftSubject, tokenSubject string, timeout time.Duration) *Consumer {
	return &Consumer{
		conn:         conn,
		handler:      handler,
		nftSubject:   nftSubject,
		tokenSubject: tokenSubject,
		timeout:      timeout,
	}
}

// Start subscribes to both deposit subjects.
func (c *Consumer) Start() error {
	nftSub, err := c.conn.Subscribe(c.nftSubject, c.callback(KindNFT))
	if err != nil {
		return err
	}
	c.subs = append(c.subs, nftSub)

	tokenSub, err := c.conn.Subscribe(c.tokenSubject, c.callback(KindToken))
	if err != nil {
		return err
	}
	c.subs = append(c.subs, tokenSub)
	return nil
}

// Stop unsubscribes from the deposit subjects.
func (c *Consumer) Stop() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("failed to unsubscribe", slog.String("error", err.Error()))
		}
	}
	c.subs = nil
}

func (c *Consumer) callback(kind AssetKind) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev DepositEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("dropping malformed deposit notification",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
			return
		}
		ev.Kind = kind

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.handler.HandleDeposit(ctx, ev); err != nil {
			slog.Warn("deposit rejected",
				slog.String("from", ev.From),
				slog.String("memo", ev.Memo),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
		}
	}
}
