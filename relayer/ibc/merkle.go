package ibc

import (
	ics23 "github.com/cosmos/ics23/go"
)

// InnerOp is one step of an ICS-23 commitment proof (spec §3, §GLOSSARY
// "Inner op"). Reused directly from the ics23 proto package rather than
// redeclared, since equality (hash_op, prefix, suffix all equal, per
// spec §3) is exactly proto struct equality on its three fields.
type InnerOp = ics23.InnerOp

// InnerOpEqual reports whether two InnerOps are equal per spec §3:
// "Two InnerOps are equal iff all three fields match."
func InnerOpEqual(a, b *InnerOp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hash == b.Hash &&
		bytesEqual(a.Prefix, b.Prefix) &&
		bytesEqual(a.Suffix, b.Suffix)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MerkleProofInfo is the per-packet proof material the clustering
// engine consumes (spec §3).
type MerkleProofInfo struct {
	LeafKey   []byte
	LeafValue []byte
	LeafOp    *ics23.LeafOp
	FullPath  []*InnerOp
}
