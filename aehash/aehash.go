// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package aehash defines the bytes that are signed for aeternity
// transactions and messages.
package aehash

import (
	"fmt"
	"hash"

	"github.com/tillitis/ae-signer/internal/varint"
	"golang.org/x/crypto/blake2b"
)

// MessagePrefix is prepended, with its length, to a message before it is
// hashed for signing.
const MessagePrefix = "aeternity Signed Message:\n"

const Size = blake2b.Size256

// New returns a running BLAKE2b-256 hash.
func New() (hash.Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("blake2b.New256: %w", err)
	}
	return h, nil
}

// MessageDigest returns the digest signed for a message:
// BLAKE2b-256(len(prefix) || prefix || varint(len(msg)) || msg).
func MessageDigest(msg []byte) ([]byte, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	h.Write([]byte{byte(len(MessagePrefix))})
	h.Write([]byte(MessagePrefix))
	h.Write(varint.Encode(uint64(len(msg))))
	h.Write(msg)

	return h.Sum(nil), nil
}

// TxSignable returns the bytes signed for a transaction: the network id
// followed by the BLAKE2b-256 digest of the serialized transaction.
func TxSignable(networkID, txDigest []byte) []byte {
	b := make([]byte, 0, len(networkID)+len(txDigest))
	b = append(b, networkID...)
	return append(b, txDigest...)
}

// TxDigest hashes a complete serialized transaction.
func TxDigest(tx []byte) ([]byte, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	h.Write(tx)
	return h.Sum(nil), nil
}
