// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package keys

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/tyler-smith/go-bip32"
)

// BIP-44 path constants, all hardened.
// Full path: m/44'/457'/account'/0'/0'
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinTypeAE   = bip32.FirstHardenedChild + 457
)

var ed25519SeedKey = []byte("ed25519 seed")

// node is a SLIP-10 Ed25519 extended private key.
type node struct {
	key   [32]byte
	chain [32]byte
}

func newNode(mac []byte) node {
	var n node
	copy(n.key[:], mac[:32])
	copy(n.chain[:], mac[32:])
	return n
}

func masterNode(seed []byte) node {
	h := hmac.New(sha512.New, ed25519SeedKey)
	h.Write(seed)
	return newNode(h.Sum(nil))
}

// child derives a hardened child. Ed25519 has no public derivation, so
// non-hardened indices are refused.
func (n node) child(index uint32) (node, error) {
	if index < bip32.FirstHardenedChild {
		return node{}, fmt.Errorf("index %d is not hardened", index)
	}

	h := hmac.New(sha512.New, n.chain[:])
	h.Write([]byte{0x00})
	h.Write(n.key[:])
	h.Write(binary.BigEndian.AppendUint32(nil, index))

	return newNode(h.Sum(nil)), nil
}

// derivePath walks path from the master node of seed.
func derivePath(seed []byte, path ...uint32) (node, error) {
	n := masterNode(seed)
	for _, index := range path {
		var err error
		if n, err = n.child(index); err != nil {
			return node{}, err
		}
	}
	return n, nil
}

// AccountPath is the derivation path of an account.
func AccountPath(account uint32) []uint32 {
	return []uint32{
		PurposeBIP44,
		CoinTypeAE,
		bip32.FirstHardenedChild | account,
		bip32.FirstHardenedChild,
		bip32.FirstHardenedChild,
	}
}

// DeriveKey derives the Ed25519 private key at path from seed.
func DeriveKey(seed []byte, path ...uint32) (ed25519.PrivateKey, error) {
	n, err := derivePath(seed, path...)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(n.key[:]), nil
}
