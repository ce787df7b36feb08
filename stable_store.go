package compax

import (
	"fmt"

	"github.com/pkg/errors"
)

// stableStoreNotFoundErr is the error text github.com/hashicorp/raft-boltdb returns for a missing key.
const stableStoreNotFoundErr = "not found"

// StableStore is used to provide stable storage for the proposer's ballot counter,
// so that a restarted proposer never reissues a ballot it already used.
// This interface is the same as the one defined in hashicorp/raft,
// which means github.com/hashicorp/raft-boltdb can be used as the store.
type StableStore interface {
	Set(key []byte, val []byte) error
	// Get returns the value for key, or an empty byte slice if key was not found.
	Get(key []byte) ([]byte, error)
	SetUint64(key []byte, val uint64) error
	// GetUint64 returns the uint64 value for key, or 0 if key was not found.
	GetUint64(key []byte) (uint64, error)
}

// proposeNumberKey is the key under which a proposer stores its last used propose number.
func proposeNumberKey(proposerID uint64) []byte {
	return []byte(fmt.Sprintf("__COMPAX__PROPOSE__NUMBER__.%d", proposerID))
}

func loadProposeNumber(store StableStore, proposerID uint64) (uint64, error) {
	n, err := store.GetUint64(proposeNumberKey(proposerID))
	if err != nil && err.Error() == stableStoreNotFoundErr {
		// a fresh store; nothing proposed yet.
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "unable to load propose number of proposer:%v", proposerID)
	}
	return n, nil
}

func saveProposeNumber(store StableStore, proposerID uint64, n uint64) error {
	err := store.SetUint64(proposeNumberKey(proposerID), n)
	if err != nil {
		return errors.Wrapf(err, "unable to flush propose number:%v of proposer:%v", n, proposerID)
	}
	return nil
}
