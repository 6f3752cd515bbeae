package audit

import (
	"testing"
)

func TestChain(t *testing.T) {
	chain := NewChain()

	e1 := chain.Append(1, "2024-03-15T09:00:00Z", "deposit 250.00 to 0000000001")
	e2 := chain.Append(2, "2024-03-15T09:01:00Z", "withdrawal 100.00 from 0000000001")
	e3 := chain.Append(3, "2024-03-15T09:02:00Z", "transfer 200.00 0000000001 -> 0000000002")

	entries := []*Entry{e1, e2, e3}
	if !VerifyChain(entries) {
		t.Error("VerifyChain failed for valid chain")
	}

	// Tamper with e2 payload
	originalPayload := e2.Payload
	e2.Payload = "withdrawal 999.00 from 0000000001"
	if VerifyChain(entries) {
		t.Error("VerifyChain succeeded for tampered payload")
	}

	// Restore payload, tamper with hash
	e2.Payload = originalPayload
	originalHash := e2.Hash
	e2.Hash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	if VerifyChain(entries) {
		t.Error("VerifyChain succeeded for tampered hash")
	}

	// Restore hash, break the link
	e2.Hash = originalHash
	e3.PreviousHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	if VerifyChain(entries) {
		t.Error("VerifyChain succeeded for broken link")
	}
}

func TestChainResume(t *testing.T) {
	chain := NewChain()
	e1 := chain.Append(1, "2024-03-15T09:00:00Z", "deposit 250.00")

	// Resuming from the archived tip continues the same chain
	resumed := NewChainFrom(e1.Hash)
	e2 := resumed.Append(2, "2024-03-15T09:01:00Z", "fee 2.50")

	if !VerifyChain([]*Entry{e1, e2}) {
		t.Error("VerifyChain failed across a resumed chain")
	}

	if NewChainFrom("").Append(1, "t", "p").PreviousHash != genesisHash {
		t.Error("empty tip should anchor at the genesis hash")
	}
}

func TestVerifyChainEmpty(t *testing.T) {
	if !VerifyChain(nil) {
		t.Error("empty chain should verify")
	}
}
