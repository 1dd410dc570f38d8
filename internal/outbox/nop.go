package outbox

import "context"

// NopQueue discards everything. Used when sync is disabled so callers can
// keep a single write path.
type NopQueue struct{}

func (NopQueue) EnqueueUpsert(ctx context.Context, recordType string, entity any) error { return nil }
func (NopQueue) EnqueueDelete(ctx context.Context, recordType, id string) error         { return nil }
func (NopQueue) Close() error                                                           { return nil }
