package queue

import (
	"context"
	"strconv"

	rd "github.com/redis/go-redis/v9"
)

// Outbox appends order lifecycle events to a Redis Stream so the HTTP request
// path never waits on Kafka; the Relay forwards stream entries asynchronously.
// A nil *Outbox is a no-op, which is how deployments without Redis/Kafka run.
type Outbox struct {
	rdb    *rd.Client
	stream string
}

func NewOutbox(rdb *rd.Client, stream string) *Outbox {
	return &Outbox{rdb: rdb, stream: stream}
}

// Emit appends one event to the stream. Events are notifications, not part
// of the order transaction: callers log failures and move on.
func (o *Outbox) Emit(ctx context.Context, ev OrderEvent) error {
	if o == nil || o.rdb == nil {
		return nil
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		Values: map[string]any{
			"event_type":  ev.EventType,
			"order_id":    strconv.FormatUint(uint64(ev.OrderID), 10),
			"order_no":    ev.OrderNo,
			"user_id":     strconv.FormatUint(uint64(ev.UserID), 10),
			"total":       ev.Total,
			"status":      ev.Status,
			"occurred_at": ev.OccurredAt.UTC().Format(timeLayout),
		},
	}).Err()
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
