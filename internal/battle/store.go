package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/bucket"
)

const metadataContentType = "application/json"

// MetadataKey is the object key a battle is persisted under.
func MetadataKey(uuid string) string {
	return uuid + ".json"
}

// AudioKey is the object key for one slot's audio. Keys embed the prompt
// source and checksum so prebaked traffic is distinguishable in the
// bucket without reading metadata.
func AudioKey(prebaked bool, promptChecksum, uuid, slot, format string) string {
	source := "original"
	if prebaked {
		source = "prebaked"
	}
	return source + "-" + promptChecksum + "-" + uuid + "-" + slot + "." + format
}

// Store resolves battles through the cache with the metadata bucket as
// fallback, and persists every mutation back to the bucket.
type Store struct {
	cache  *Cache
	bucket bucket.Bucket
}

func NewStore(cache *Cache, metadataBucket bucket.Bucket) *Store {
	return &Store{cache: cache, bucket: metadataBucket}
}

// Get returns the battle by uuid, or a NotFoundError.
func (s *Store) Get(ctx context.Context, uuid string) (arena.Battle, error) {
	if b, ok := s.cache.Get(uuid); ok {
		return b, nil
	}

	data, err := s.bucket.Get(ctx, MetadataKey(uuid))
	if err != nil {
		var notFound *arena.NotFoundError
		if errors.As(err, &notFound) {
			return arena.Battle{}, &arena.NotFoundError{Resource: "battle", ID: uuid}
		}
		return arena.Battle{}, err
	}

	var b arena.Battle
	if err := json.Unmarshal(data, &b); err != nil {
		return arena.Battle{}, fmt.Errorf("decoding battle %s: %w", uuid, err)
	}
	s.cache.Put(b)
	return b, nil
}

// Put caches the battle and writes it to the metadata bucket.
func (s *Store) Put(ctx context.Context, b arena.Battle) error {
	s.cache.Put(b)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding battle %s: %w", b.UUID, err)
	}
	return s.bucket.Put(ctx, MetadataKey(b.UUID), data, metadataContentType, true)
}

// CachePut updates only the cache, for writes whose bucket persistence
// is handled separately.
func (s *Store) CachePut(b arena.Battle) {
	s.cache.Put(b)
}
