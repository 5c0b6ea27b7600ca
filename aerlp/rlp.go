// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package aerlp decodes Recursive Length Prefix encoded data, the
// serialization aeternity uses for transactions, into a tree of items.
//
// The decoder is strict: it only accepts the canonical encoding of every
// item, so a given tree has exactly one accepted serialization.
package aerlp

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// MaxDepth bounds the nesting of lists a decode accepts.
const MaxDepth = 32

var (
	ErrMalformed       = errors.New("rlp: malformed encoding")
	ErrNonCanonical    = errors.New("rlp: non-canonical encoding")
	ErrTrailingBytes   = errors.New("rlp: trailing bytes after item")
	ErrTooDeep         = errors.New("rlp: lists nested too deep")
	ErrExpectedString  = errors.New("rlp: expected string, got list")
	ErrExpectedList    = errors.New("rlp: expected list, got string")
	ErrUintOverflow    = errors.New("rlp: integer overflows target type")
	ErrNonCanonicalInt = errors.New("rlp: integer has leading zero bytes")
)

type Kind int

const (
	String Kind = iota
	List
)

func (k Kind) String() string {
	if k == List {
		return "list"
	}
	return "string"
}

// Item is a decoded string or list. String contents alias the buffer the
// item was decoded from.
type Item struct {
	kind  Kind
	str   []byte
	items []Item
}

func (it Item) Kind() Kind {
	return it.kind
}

// Bytes returns the contents of a string item.
func (it Item) Bytes() ([]byte, error) {
	if it.kind != String {
		return nil, ErrExpectedString
	}
	return it.str, nil
}

// List returns the children of a list item.
func (it Item) List() ([]Item, error) {
	if it.kind != List {
		return nil, ErrExpectedList
	}
	return it.items, nil
}

// uintBytes returns the big endian contents of an integer item that must
// fit in size bytes.
func (it Item) uintBytes(size int) ([]byte, error) {
	b, err := it.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > size {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrUintOverflow, len(b), size)
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrNonCanonicalInt
	}
	return b, nil
}

func (it Item) uint(size int) (uint64, error) {
	b, err := it.uintBytes(size)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Uint8 decodes a string item as an unsigned integer of at most one byte.
// Zero is the empty string.
func (it Item) Uint8() (uint8, error) {
	v, err := it.uint(1)
	return uint8(v), err
}

func (it Item) Uint32() (uint32, error) {
	v, err := it.uint(4)
	return uint32(v), err
}

func (it Item) Uint64() (uint64, error) {
	return it.uint(8)
}

// Uint256 decodes a string item as an unsigned integer of at most 32
// bytes.
func (it Item) Uint256() (*uint256.Int, error) {
	b, err := it.uintBytes(32)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

// SplitHeader reads the header of the item at the front of buf without
// requiring its content to be present. For a single byte item the
// header is empty and the content is that byte.
func SplitHeader(buf []byte) (k Kind, headerLen, contentLen int, err error) {
	if len(buf) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	b := buf[0]
	switch {
	case b < 0x80:
		return String, 0, 1, nil
	case b < 0xb8:
		size := int(b - 0x80)
		if size == 1 && len(buf) > 1 && buf[1] < 0x80 {
			return 0, 0, 0, fmt.Errorf("%w: single byte 0x%02x wrapped as string", ErrNonCanonical, buf[1])
		}
		return String, 1, size, nil
	case b < 0xc0:
		size, err := readSize(buf[1:], int(b-0xb7))
		if err != nil {
			return 0, 0, 0, err
		}
		return String, 1 + int(b-0xb7), size, nil
	case b < 0xf8:
		return List, 1, int(b - 0xc0), nil
	default:
		size, err := readSize(buf[1:], int(b-0xf7))
		if err != nil {
			return 0, 0, 0, err
		}
		return List, 1 + int(b-0xf7), size, nil
	}
}

// readSize reads the n byte big endian length of a long form header.
func readSize(b []byte, n int) (int, error) {
	if len(b) < n {
		return 0, fmt.Errorf("%w: length of length %d exceeds remaining %d", ErrMalformed, n, len(b))
	}
	if b[0] == 0 {
		return 0, fmt.Errorf("%w: length has leading zero", ErrNonCanonical)
	}
	// Lengths beyond 4 bytes cannot fit in any buffer we handle.
	if n > 4 {
		return 0, fmt.Errorf("%w: %d byte length", ErrMalformed, n)
	}

	var size uint64
	for _, c := range b[:n] {
		size = size<<8 | uint64(c)
	}
	if size < 56 {
		return 0, fmt.Errorf("%w: long form for %d bytes", ErrNonCanonical, size)
	}
	if size > uint64(maxInt) {
		return 0, fmt.Errorf("%w: length %d too large", ErrMalformed, size)
	}

	return int(size), nil
}

const maxInt = int(^uint(0) >> 1)

// Split lexes the item at the front of buf and returns its kind, its
// content and the bytes after it.
func Split(buf []byte) (k Kind, content, rest []byte, err error) {
	k, hl, cl, err := SplitHeader(buf)
	if err != nil {
		return 0, nil, nil, err
	}
	if cl > len(buf)-hl {
		return 0, nil, nil, fmt.Errorf("%w: content length %d exceeds remaining %d", ErrMalformed, cl, len(buf)-hl)
	}
	return k, buf[hl : hl+cl], buf[hl+cl:], nil
}

// Decode decodes the item at the front of buf and returns it with the
// bytes after it.
func Decode(buf []byte) (Item, []byte, error) {
	return decode(buf, 0)
}

// DecodeAll decodes buf as exactly one item.
func DecodeAll(buf []byte) (Item, error) {
	it, rest, err := Decode(buf)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(rest))
	}
	return it, nil
}

func decode(buf []byte, depth int) (Item, []byte, error) {
	k, content, rest, err := Split(buf)
	if err != nil {
		return Item{}, nil, err
	}
	if k == String {
		return Item{kind: String, str: content}, rest, nil
	}

	if depth >= MaxDepth {
		return Item{}, nil, ErrTooDeep
	}

	items := []Item{}
	for len(content) > 0 {
		var child Item
		child, content, err = decode(content, depth+1)
		if err != nil {
			return Item{}, nil, err
		}
		items = append(items, child)
	}

	return Item{kind: List, items: items}, rest, nil
}
