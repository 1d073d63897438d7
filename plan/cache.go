package plan

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// CacheID identifies a cached subtree. Two Cache nodes with the same ID
// promise the same materialization; an executor may compute it once and
// reuse it.
type CacheID uuid.UUID

func (id CacheID) String() string {
	return uuid.UUID(id).String()
}

func (id CacheID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *CacheID) UnmarshalText(text []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(text); err != nil {
		return err
	}
	*id = CacheID(u)
	return nil
}

// CacheIDAllocator mints identifiers for Cache nodes. There is no package
// global: callers inject the allocator they want, which keeps id generation
// testable and lets embedders supply their own scheme. Implementations must
// be safe for concurrent use.
type CacheIDAllocator interface {
	NextCacheID() CacheID
}

// RandomCacheIDs allocates time-ordered random identifiers.
type RandomCacheIDs struct{}

func (RandomCacheIDs) NextCacheID() CacheID {
	return CacheID(uuid.Must(uuid.NewV7()))
}

// SequentialCacheIDs allocates deterministic counter-based identifiers, for
// tests and reproducible plan dumps.
type SequentialCacheIDs struct {
	next atomic.Uint64
}

func NewSequentialCacheIDs() *SequentialCacheIDs {
	return &SequentialCacheIDs{}
}

func (s *SequentialCacheIDs) NextCacheID() CacheID {
	n := s.next.Add(1)
	var id CacheID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}
