// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Package state provides the journaled account state native contracts run
// against. Changes live in memory until Commit flushes them to the database.

package state

import (
	"fmt"
	"sort"

	"github.com/HITEYY/go-refunder/core/rawdb"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB structs within the refunder chain are used to store anything
// within the account state. It takes care of caching, journaling and
// persisting accounts, code and storage.
type StateDB struct {
	db ethdb.KeyValueReader

	// This map holds 'live' objects, which will get modified while processing
	// a state transition.
	stateObjects map[common.Address]*stateObject

	// Transient storage, cleared on every commit
	transientStorage map[common.Address]Storage

	// Per-transaction log collection
	thash   common.Hash
	logs    []*types.Log
	logSize uint

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a new state on top of the given database.
func New(db ethdb.KeyValueReader) *StateDB {
	return &StateDB{
		db:               db,
		stateObjects:     make(map[common.Address]*stateObject),
		transientStorage: make(map[common.Address]Storage),
		journal:          newJournal(),
	}
}

// Prepare sets the hash of the transaction about to be executed and clears
// the log collection of the previous one.
func (s *StateDB) Prepare(thash common.Hash) {
	s.thash = thash
	s.logs = nil
	s.logSize = 0
}

// AddLog records a log emitted during the current transaction.
func (s *StateDB) AddLog(l *types.Log) {
	s.journal.append(addLogChange{})

	l.TxHash = s.thash
	l.Index = s.logSize
	s.logs = append(s.logs, l)
	s.logSize++
}

// Logs returns the logs of the current transaction.
func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

// Exist reports whether the given account exists in state.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// Empty returns whether the state object is either non-existent
// or empty according to the EIP161 specification (balance = nonce = code = 0)
func (s *StateDB) Empty(addr common.Address) bool {
	so := s.getStateObject(addr)
	return so == nil || so.empty()
}

// GetBalance retrieves the balance from the given address or 0 if object not found
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return new(uint256.Int).Set(stateObject.Balance())
	}
	return new(uint256.Int)
}

// GetNonce retrieves the nonce from the given address or 0 if object not found
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Nonce()
	}
	return 0
}

// GetCode returns the code of an account, nil if it has none.
func (s *StateDB) GetCode(addr common.Address) []byte {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Code()
	}
	return nil
}

// GetCodeHash returns the code hash of an account, the zero hash if it does
// not exist.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		return common.Hash{}
	}
	return common.BytesToHash(stateObject.CodeHash())
}

// GetState retrieves the value associated with the specific key.
func (s *StateDB) GetState(addr common.Address, hash common.Hash) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.GetState(hash)
	}
	return common.Hash{}
}

// AddBalance adds amount to the account associated with addr.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	s.getOrNewStateObject(addr).AddBalance(amount)
}

// SubBalance subtracts amount from the account associated with addr. The
// caller checks the balance first.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	stateObject := s.getOrNewStateObject(addr)
	if stateObject.Balance().Lt(amount) {
		panic(fmt.Sprintf("balance underflow: %s has %s, subtracting %s", addr, stateObject.Balance(), amount))
	}
	stateObject.SubBalance(amount)
}

// SetNonce sets the nonce of an account.
func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	s.getOrNewStateObject(addr).SetNonce(nonce)
}

// SetCode sets the code of an account.
func (s *StateDB) SetCode(addr common.Address, code []byte) {
	s.getOrNewStateObject(addr).SetCode(code)
}

// SetState sets a storage slot of an account.
func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	s.getOrNewStateObject(addr).SetState(key, value)
}

// SetTransientState sets transient storage for a given account. It
// adds the change to the journal so that it can be rolled back
// to its previous value if there is a revert.
func (s *StateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	prev := s.GetTransientState(addr, key)
	if prev == value {
		return
	}
	s.journal.append(transientStorageChange{
		account:  addr,
		key:      key,
		prevalue: prev,
	})
	s.setTransientState(addr, key, value)
}

// setTransientState is a lower level setter for transient storage. It
// is called during a revert to prevent modifications to the journal.
func (s *StateDB) setTransientState(addr common.Address, key, value common.Hash) {
	storage, ok := s.transientStorage[addr]
	if !ok {
		storage = make(Storage)
		s.transientStorage[addr] = storage
	}
	storage[key] = value
}

// GetTransientState gets transient storage for a given account.
func (s *StateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	storage, ok := s.transientStorage[addr]
	if !ok {
		return common.Hash{}
	}
	return storage[key]
}

// CreateAccount explicitly creates a new state object. If a state object with
// the address already exists the balance is carried over to the new account.
func (s *StateDB) CreateAccount(addr common.Address) {
	prev := s.getStateObject(addr)
	obj := newObject(s, addr, nil)
	if prev != nil {
		obj.setBalance(new(uint256.Int).Set(prev.Balance()))
		prev = prev.deepCopy(s)
	}
	s.journal.append(createObjectChange{account: addr, prev: prev})
	s.stateObjects[addr] = obj
}

// getStateObject retrieves a state object given by the address, loading it
// from the database on first access. Returns nil if not found.
func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	acct := rawdb.ReadAccount(s.db, addr)
	if acct == nil {
		return nil
	}
	obj := newObject(s, addr, acct)
	s.stateObjects[addr] = obj
	return obj
}

func (s *StateDB) getOrNewStateObject(addr common.Address) *stateObject {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		s.journal.append(createObjectChange{account: addr})
		stateObject = newObject(s, addr, nil)
		s.stateObjects[addr] = stateObject
	}
	return stateObject
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Commit writes every modified account, its code and its storage to db. The
// journal and transient storage are cleared; the state stays usable.
func (s *StateDB) Commit(db ethdb.KeyValueWriter) {
	addrs := make([]common.Address, 0, len(s.stateObjects))
	for addr := range s.stateObjects {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })

	var slots int
	for _, addr := range addrs {
		obj := s.stateObjects[addr]
		if obj.dirtyCode {
			rawdb.WriteCode(db, common.BytesToHash(obj.CodeHash()), obj.code)
			obj.dirtyCode = false
		}
		rawdb.WriteAccount(db, addr, &obj.data)
		for key, value := range obj.dirtyStorage {
			rawdb.WriteStorage(db, addr, key, value)
			obj.originStorage[key] = value
			slots++
		}
		obj.dirtyStorage = make(Storage)
	}
	s.journal.reset()
	s.validRevisions = s.validRevisions[:0]
	s.transientStorage = make(map[common.Address]Storage)
	log.Debug("Committed state", "accounts", len(addrs), "slots", slots)
}
