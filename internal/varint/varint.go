// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package varint encodes the CompactSize variable length integers used
// as length prefixes in signed messages.
package varint

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// Encode returns the shortest CompactSize encoding of n.
func Encode(n uint64) []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail.
	_ = wire.WriteVarInt(&buf, 0, n)
	return buf.Bytes()
}

// Decode reads one CompactSize integer from the front of b and returns
// it with the remaining bytes. Non-canonical encodings are rejected.
func Decode(b []byte) (uint64, []byte, error) {
	n, err := wire.ReadVarInt(bytes.NewReader(b), 0)
	if err != nil {
		return 0, nil, fmt.Errorf("ReadVarInt: %w", err)
	}
	return n, b[wire.VarIntSerializeSize(n):], nil
}
