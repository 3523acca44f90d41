// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package common holds the small fixed-size value types shared across the
// gossip packages: content hashes and originator public keys.
package common

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// HashLength is the number of bytes in a value hash (SHA-256 digest).
const HashLength = 32

// PubkeyLength is the number of bytes in an originator public key.
const PubkeyLength = 32

// Hash is the 32-byte SHA-256 digest of a value's canonical encoding.
type Hash [HashLength]byte

// BytesToHash right-aligns b into a Hash, truncating from the left if b is
// longer than HashLength.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a fresh copy of the hash contents.
func (h Hash) Bytes() []byte { return CopyBytes(h[:]) }

// Hex returns the hex encoding of the hash, without a leading "0x".
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// Less reports whether h sorts strictly before other under the lexicographic
// byte order used to tie-break equal-wallclock conflicts.
func (h Hash) Less(other Hash) bool { return bytes.Compare(h[:], other[:]) < 0 }

// Cmp is the three-way lexicographic byte comparison of two hashes.
func (h Hash) Cmp(other Hash) int { return bytes.Compare(h[:], other[:]) }

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// FirstU64LE interprets the first 8 bytes of the hash as a little-endian
// u64 — the value the shard bucket id and bitmask comparisons are derived
// from.
func (h Hash) FirstU64LE() uint64 { return binary.LittleEndian.Uint64(h[:8]) }

// Pubkey is a 32-byte gossip value originator identity.
type Pubkey [PubkeyLength]byte

func BytesToPubkey(b []byte) Pubkey {
	var p Pubkey
	copy(p[:], b)
	return p
}

func (p Pubkey) Bytes() []byte { return CopyBytes(p[:]) }
func (p Pubkey) Hex() string   { return hex.EncodeToString(p[:]) }
func (p Pubkey) String() string {
	return fmt.Sprintf("%s…", p.Hex()[:8])
}

// CopyBytes returns an independent copy of b, the same pattern
// common.CopyBytes follows throughout the db layer to avoid aliasing
// caller-owned slices.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
