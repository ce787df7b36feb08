package compax

import (
	"sync"

	"github.com/pkg/errors"
)

// InmemStore implements the StableStore interface.
// A Proposer keeps its last propose number in a StableStore so that it never hands out the same ballot twice;
// InmemStore only keeps that number for the life of the process, which is enough for tests and in-process examples.
// It should NEVER be used for production; a proposer using it forgets its ballot counter on restart and
// may reissue ballots that acceptors have already seen.
// Use the github.com/hashicorp/raft-boltdb implementation instead.
type InmemStore struct {
	l     sync.RWMutex
	kv    map[string][]byte
	kvInt map[string]uint64
}

// NewInmemStore returns an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{kv: map[string][]byte{}, kvInt: map[string]uint64{}}
}

// Set implements the StableStore interface.
func (i *InmemStore) Set(key []byte, val []byte) error {
	i.l.Lock()
	defer i.l.Unlock()
	i.kv[string(key)] = val
	return nil
}

// Get implements the StableStore interface.
func (i *InmemStore) Get(key []byte) ([]byte, error) {
	i.l.RLock()
	defer i.l.RUnlock()
	val := i.kv[string(key)]

	// behave like raft-boltdb; see: https://github.com/hashicorp/raft-boltdb/blob/6e5ba93211eaf8d9a2ad7e41ffad8c6f160f9fe3/bolt_store.go#L241-L246
	if val == nil {
		return nil, errors.New(stableStoreNotFoundErr)
	}
	return val, nil
}

// SetUint64 implements the StableStore interface.
func (i *InmemStore) SetUint64(key []byte, val uint64) error {
	i.l.Lock()
	defer i.l.Unlock()
	i.kvInt[string(key)] = val
	return nil
}

// GetUint64 implements the StableStore interface.
func (i *InmemStore) GetUint64(key []byte) (uint64, error) {
	i.l.RLock()
	defer i.l.RUnlock()
	return i.kvInt[string(key)], nil
}
