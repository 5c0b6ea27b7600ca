// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/tillitis/ae-signer/aehash"
	"github.com/tillitis/ae-signer/aerlp"
	"github.com/tillitis/ae-signer/apdu"
)

const (
	// MaxNetworkIDLength bounds the network id in a transaction header.
	MaxNetworkIDLength = 32
	// MaxTxLength bounds the declared length of a serialized
	// transaction.
	MaxTxLength = 64 * 1024

	txHeaderFixedLen = 4 + 4 + 1
)

// TxHeader leads the first chunk of a transaction:
//
//	[0..3]  account index, big endian
//	[4..7]  length of the serialized transaction, big endian
//	[8]     length of the network id, at most 32
//	[9..]   network id
//
// The serialized transaction follows directly, in this and the next
// chunks.
type TxHeader struct {
	Account   uint32
	Length    uint32
	NetworkID []byte
}

// ParseTxHeader parses the header at the front of chunk and returns the
// bytes after it.
func ParseTxHeader(chunk []byte) (TxHeader, []byte, error) {
	if len(chunk) < txHeaderFixedLen {
		return TxHeader{}, nil, fmt.Errorf("header is %d bytes, want at least %d", len(chunk), txHeaderFixedLen)
	}

	hdr := TxHeader{
		Account: binary.BigEndian.Uint32(chunk[0:4]),
		Length:  binary.BigEndian.Uint32(chunk[4:8]),
	}

	n := int(chunk[8])
	if n > MaxNetworkIDLength {
		return TxHeader{}, nil, fmt.Errorf("network id is %d bytes, max %d", n, MaxNetworkIDLength)
	}
	rest := chunk[txHeaderFixedLen:]
	if len(rest) < n {
		return TxHeader{}, nil, fmt.Errorf("network id is %d bytes, only %d present", n, len(rest))
	}
	hdr.NetworkID = append([]byte{}, rest[:n]...)

	return hdr, rest[n:], nil
}

// TxContext collects the chunks of one transaction. Every received
// transaction byte is both hashed and kept, so the decoded transaction
// is exactly the hashed one.
type TxContext struct {
	active bool
	header TxHeader
	buf    []byte
	hash   hash.Hash
}

func NewTxContext() *TxContext {
	return &TxContext{}
}

// Reset drops any sequence in progress.
func (c *TxContext) Reset() {
	*c = TxContext{}
}

func (c *TxContext) Active() bool {
	return c.active
}

func (c *TxContext) Header() TxHeader {
	return c.header
}

// Received is the number of transaction bytes collected so far.
func (c *TxContext) Received() int {
	return len(c.buf)
}

// Complete tells whether all declared transaction bytes are collected.
func (c *TxContext) Complete() bool {
	return c.active && len(c.buf) == int(c.header.Length)
}

// Start begins a new sequence from the first chunk, dropping any earlier
// one.
func (c *TxContext) Start(chunk []byte) error {
	c.Reset()

	hdr, rest, err := ParseTxHeader(chunk)
	if err != nil {
		return fail(apdu.SwTxParsingFail, err)
	}
	if hdr.Length == 0 || hdr.Length > MaxTxLength {
		return failf(apdu.SwTxWrongLength, "declared length %d outside 1..%d", hdr.Length, MaxTxLength)
	}

	h, err := aehash.New()
	if err != nil {
		return fail(apdu.SwTxHashFail, err)
	}

	c.active = true
	c.header = hdr
	c.hash = h
	c.buf = make([]byte, 0, hdr.Length)

	if err := c.fold(rest); err != nil {
		return err
	}

	return c.checkKind()
}

// Continue adds a chunk to the sequence in progress.
func (c *TxContext) Continue(chunk []byte) error {
	if !c.active {
		return failf(apdu.SwBadState, "continuation without a first chunk")
	}
	return c.fold(chunk)
}

func (c *TxContext) fold(b []byte) error {
	if len(c.buf)+len(b) > int(c.header.Length) {
		return failf(apdu.SwTxWrongLength, "%d bytes received, %d declared", len(c.buf)+len(b), c.header.Length)
	}

	// Writing to a hash.Hash never fails.
	c.hash.Write(b)
	c.buf = append(c.buf, b...)

	return nil
}

// checkKind rejects anything but a spend transaction as soon as the
// outer list header and the tag are present.
func (c *TxContext) checkKind() error {
	if len(c.buf) == 0 {
		return nil
	}
	if c.buf[0] < 0xc0 {
		return failf(apdu.SwTxParsingFail, "transaction is not a list")
	}

	_, hl, _, err := aerlp.SplitHeader(c.buf)
	if err != nil {
		return c.earlyError(err)
	}
	if hl >= len(c.buf) {
		return nil
	}

	tagItem, _, err := aerlp.Decode(c.buf[hl:])
	if err != nil {
		return c.earlyError(err)
	}
	tag, err := tagItem.Uint8()
	if err != nil {
		return fail(apdu.SwTxParsingFail, fmt.Errorf("tag: %w", err))
	}
	if tag != spendTxTag {
		return failf(apdu.SwDeny, "transaction type %d is not supported", tag)
	}

	return nil
}

// earlyError tolerates bytes that are merely missing so far.
func (c *TxContext) earlyError(err error) error {
	if errors.Is(err, aerlp.ErrMalformed) && !c.Complete() {
		return nil
	}
	return fail(apdu.SwTxParsingFail, err)
}

// Summary decodes the complete transaction.
func (c *TxContext) Summary() (TxSummary, error) {
	if !c.Complete() {
		return TxSummary{}, failf(apdu.SwBadState, "transaction incomplete: %d of %d bytes", len(c.buf), c.header.Length)
	}

	item, err := aerlp.DecodeAll(c.buf)
	if err != nil {
		return TxSummary{}, fail(apdu.SwTxParsingFail, err)
	}

	return parseSpendTx(item)
}

// Signable finalizes the hash and returns the bytes to sign.
func (c *TxContext) Signable() ([]byte, error) {
	if !c.Complete() || c.hash == nil {
		return nil, failf(apdu.SwTxHashFail, "no complete transaction hashed")
	}
	return aehash.TxSignable(c.header.NetworkID, c.hash.Sum(nil)), nil
}
