// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package aeaddr encodes and decodes aeternity addresses: a two letter
// prefix, an underscore, and the base58 encoding of a 32 byte payload
// followed by a 4 byte double SHA-256 checksum.
package aeaddr

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

type Prefix string

const (
	AccountPubkey Prefix = "ak"
	NameID        Prefix = "nm"
)

const (
	PayloadSize  = 32
	checksumSize = 4
	// IDSize is the size of an id as serialized inside transactions: a
	// tag byte followed by the payload.
	IDSize = 1 + PayloadSize
)

// Id tags used inside serialized transactions.
const (
	idTagAccount byte = 1
	idTagName    byte = 2
)

var (
	ErrInvalidPrefix   = errors.New("invalid address prefix")
	ErrInvalidEncoding = errors.New("invalid address encoding")
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

func (p Prefix) known() bool {
	return p == AccountPubkey || p == NameID
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}

// Encode returns the textual address of payload under prefix p.
func Encode(payload [PayloadSize]byte, p Prefix) string {
	b := make([]byte, 0, PayloadSize+checksumSize)
	b = append(b, payload[:]...)
	b = append(b, checksum(payload[:])...)

	return string(p) + "_" + base58.Encode(b)
}

// Decode parses a textual address and verifies its checksum.
func Decode(s string) ([PayloadSize]byte, Prefix, error) {
	var payload [PayloadSize]byte

	tag, body, found := strings.Cut(s, "_")
	p := Prefix(tag)
	if !found || !p.known() {
		return payload, "", fmt.Errorf("%w: %q", ErrInvalidPrefix, tag)
	}

	// base58.Decode returns an empty slice on characters outside the
	// alphabet.
	b := base58.Decode(body)
	if len(b) != PayloadSize+checksumSize {
		return payload, "", fmt.Errorf("%w: decoded %d bytes, want %d",
			ErrInvalidEncoding, len(b), PayloadSize+checksumSize)
	}

	if !bytes.Equal(checksum(b[:PayloadSize]), b[PayloadSize:]) {
		return payload, "", ErrInvalidChecksum
	}
	copy(payload[:], b)

	return payload, p, nil
}

// FromIDBytes encodes a serialized id (tag byte plus payload), as found in
// transaction fields, as a textual address.
func FromIDBytes(id []byte) (string, error) {
	if len(id) != IDSize {
		return "", fmt.Errorf("%w: id is %d bytes, want %d", ErrInvalidEncoding, len(id), IDSize)
	}

	var p Prefix
	switch id[0] {
	case idTagAccount:
		p = AccountPubkey
	case idTagName:
		p = NameID
	default:
		return "", fmt.Errorf("%w: unknown id tag %d", ErrInvalidPrefix, id[0])
	}

	var payload [PayloadSize]byte
	copy(payload[:], id[1:])

	return Encode(payload, p), nil
}
