// Copyright 2025 The go-obsidian Authors

package state

import (
	"bytes"
	"testing"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
)

var (
	addrA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestSnapshotRevertsEverything(t *testing.T) {
	s := New(memorydb.New())
	s.AddBalance(addrA, uint256.NewInt(100))
	s.SetState(addrA, common.Hash{1}, common.Hash{2})

	snap := s.Snapshot()
	s.SubBalance(addrA, uint256.NewInt(40))
	s.AddBalance(addrB, uint256.NewInt(40))
	s.SetNonce(addrA, 5)
	s.SetCode(addrB, []byte{0xef, 0x00})
	s.SetState(addrA, common.Hash{1}, common.Hash{3})
	s.SetTransientState(addrA, common.Hash{}, common.Hash{1})
	s.AddLog(&types.Log{Address: addrA})

	s.RevertToSnapshot(snap)

	if have := s.GetBalance(addrA).Uint64(); have != 100 {
		t.Errorf("balance A not reverted: have %d want 100", have)
	}
	if s.Exist(addrB) {
		t.Errorf("account B survived revert")
	}
	if have := s.GetNonce(addrA); have != 0 {
		t.Errorf("nonce not reverted: have %d", have)
	}
	if have := s.GetState(addrA, common.Hash{1}); have != (common.Hash{2}) {
		t.Errorf("storage not reverted: have %s", have)
	}
	if have := s.GetTransientState(addrA, common.Hash{}); have != (common.Hash{}) {
		t.Errorf("transient storage not reverted: have %s", have)
	}
	if len(s.Logs()) != 0 {
		t.Errorf("logs not reverted: have %d", len(s.Logs()))
	}
}

func TestNestedSnapshots(t *testing.T) {
	s := New(memorydb.New())
	s.AddBalance(addrA, uint256.NewInt(1))
	outer := s.Snapshot()
	s.AddBalance(addrA, uint256.NewInt(1))
	inner := s.Snapshot()
	s.AddBalance(addrA, uint256.NewInt(1))

	s.RevertToSnapshot(inner)
	if have := s.GetBalance(addrA).Uint64(); have != 2 {
		t.Fatalf("inner revert: have %d want 2", have)
	}
	s.RevertToSnapshot(outer)
	if have := s.GetBalance(addrA).Uint64(); have != 1 {
		t.Fatalf("outer revert: have %d want 1", have)
	}
}

func TestCommitPersists(t *testing.T) {
	db := memorydb.New()
	s := New(db)
	code := []byte{0xef, 0x01, 0x41}
	s.AddBalance(addrA, uint256.NewInt(7))
	s.SetNonce(addrA, 1)
	s.SetCode(addrA, code)
	s.SetState(addrA, common.Hash{1}, common.Hash{9})
	s.SetTransientState(addrA, common.Hash{1}, common.Hash{1})
	s.Commit(db)

	if have := s.GetTransientState(addrA, common.Hash{1}); have != (common.Hash{}) {
		t.Fatalf("transient storage survived commit: have %s", have)
	}

	fresh := New(db)
	if have := fresh.GetBalance(addrA).Uint64(); have != 7 {
		t.Errorf("balance mismatch: have %d want 7", have)
	}
	if have := fresh.GetNonce(addrA); have != 1 {
		t.Errorf("nonce mismatch: have %d want 1", have)
	}
	if have := fresh.GetCode(addrA); !bytes.Equal(have, code) {
		t.Errorf("code mismatch: have %x want %x", have, code)
	}
	if have := fresh.GetState(addrA, common.Hash{1}); have != (common.Hash{9}) {
		t.Errorf("storage mismatch: have %s", have)
	}

	// Clearing a slot removes it from the database.
	fresh.SetState(addrA, common.Hash{1}, common.Hash{})
	fresh.Commit(db)
	if have := New(db).GetState(addrA, common.Hash{1}); have != (common.Hash{}) {
		t.Errorf("cleared slot mismatch: have %s", have)
	}
}

func TestLogIndexing(t *testing.T) {
	s := New(memorydb.New())
	thash := common.HexToHash("0xabcd")
	s.Prepare(thash)
	s.AddLog(&types.Log{Address: addrA})
	s.AddLog(&types.Log{Address: addrB})

	logs := s.Logs()
	if len(logs) != 2 {
		t.Fatalf("log count mismatch: have %d want 2", len(logs))
	}
	for i, l := range logs {
		if l.TxHash != thash || l.Index != uint(i) {
			t.Errorf("log %d: have hash %s index %d", i, l.TxHash, l.Index)
		}
	}
	s.Prepare(common.Hash{})
	if len(s.Logs()) != 0 {
		t.Fatalf("logs not cleared by Prepare")
	}
}

func TestSubBalanceUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on underflow")
		}
	}()
	s := New(memorydb.New())
	s.SubBalance(addrA, uint256.NewInt(1))
}
