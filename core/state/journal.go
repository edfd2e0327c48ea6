// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*StateDB)
}

// journal contains the list of state modifications applied since the last state
// commit. These are tracked to be able to be reverted in the case of an execution
// exception or request for reversal.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return new(journal)
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes a batch of journalled modifications.
func (j *journal) revert(statedb *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(statedb)
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

func (j *journal) reset() {
	j.entries = j.entries[:0]
}

type (
	// Changes to the account trie.
	createObjectChange struct {
		account common.Address
		prev    *stateObject // nil if the account did not exist before
	}
	balanceChange struct {
		account common.Address
		prev    *uint256.Int
	}
	nonceChange struct {
		account common.Address
		prev    uint64
	}
	codeChange struct {
		account   common.Address
		prevcode  []byte
		prevhash  []byte
		prevdirty bool
	}
	storageChange struct {
		account   common.Address
		key       common.Hash
		prevvalue common.Hash
	}
	transientStorageChange struct {
		account       common.Address
		key, prevalue common.Hash
	}
	addLogChange struct{}
)

func (ch createObjectChange) revert(s *StateDB) {
	if ch.prev == nil {
		delete(s.stateObjects, ch.account)
		return
	}
	s.stateObjects[ch.account] = ch.prev
}

func (ch balanceChange) revert(s *StateDB) {
	s.getStateObject(ch.account).setBalance(ch.prev)
}

func (ch nonceChange) revert(s *StateDB) {
	s.getStateObject(ch.account).setNonce(ch.prev)
}

func (ch codeChange) revert(s *StateDB) {
	obj := s.getStateObject(ch.account)
	obj.setCode(common.BytesToHash(ch.prevhash), ch.prevcode)
	obj.dirtyCode = ch.prevdirty
}

func (ch storageChange) revert(s *StateDB) {
	s.getStateObject(ch.account).setState(ch.key, ch.prevvalue)
}

func (ch transientStorageChange) revert(s *StateDB) {
	s.setTransientState(ch.account, ch.key, ch.prevalue)
}

func (ch addLogChange) revert(s *StateDB) {
	s.logs = s.logs[:len(s.logs)-1]
	s.logSize--
}
