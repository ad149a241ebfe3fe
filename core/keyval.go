package core

import "context"

// KeyValueStore is the durable local store the tracker persists its
// collections into. Implementations live in storage/keyval.
//
// Load reports a missing key as (nil, false, nil): absence is not an error.
// Save overwrites the full value stored under key.
type KeyValueStore interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}
