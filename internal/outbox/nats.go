package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// ErrNotConnected is returned when a message is enqueued after the NATS
// connection was closed.
var ErrNotConnected = errors.New("not connected to sync queue")

// Message is the wire envelope published for each replicated mutation.
type Message struct {
	ID         string          `json:"id"`
	Op         string          `json:"op"` // "upsert" or "delete"
	RecordType string          `json:"record_type"`
	Key        string          `json:"key,omitempty"`
	Entity     json.RawMessage `json:"entity,omitempty"`
	At         time.Time       `json:"at"`
}

// NATSQueue publishes sync messages to NATS subjects of the form
// <prefix>.sync.<record-type>.<op>.
type NATSQueue struct {
	conn   *nats.Conn
	prefix string
	now    func() time.Time
}

// DialNATS connects to the sync broker. Reconnection is left to the client
// library; while disconnected, published messages buffer in the connection
// up to its internal limit.
func DialNATS(url, prefix string) (*NATSQueue, error) {
	conn, err := nats.Connect(url,
		nats.Name("daybook-sync"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to sync queue: %w", err)
	}
	return &NATSQueue{conn: conn, prefix: prefix, now: time.Now}, nil
}

func (q *NATSQueue) EnqueueUpsert(ctx context.Context, recordType string, entity any) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encoding %s entity: %w", recordType, err)
	}
	return q.publish(ctx, recordType, "upsert", Message{
		ID:         uuid.NewString(),
		Op:         "upsert",
		RecordType: recordType,
		Entity:     raw,
		At:         q.now(),
	})
}

func (q *NATSQueue) EnqueueDelete(ctx context.Context, recordType, id string) error {
	return q.publish(ctx, recordType, "delete", Message{
		ID:         uuid.NewString(),
		Op:         "delete",
		RecordType: recordType,
		Key:        id,
		At:         q.now(),
	})
}

func (q *NATSQueue) publish(ctx context.Context, recordType, op string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.conn == nil || q.conn.IsClosed() {
		return ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding sync message: %w", err)
	}
	subject := fmt.Sprintf("%s.sync.%s.%s", q.prefix, recordType, op)
	return q.conn.Publish(subject, data)
}

// Close flushes buffered messages and drains the connection.
func (q *NATSQueue) Close() error {
	if q.conn == nil || q.conn.IsClosed() {
		return nil
	}
	return q.conn.Drain()
}
