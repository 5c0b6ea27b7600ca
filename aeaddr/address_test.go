// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package aeaddr

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func sequential() [PayloadSize]byte {
	var p [PayloadSize]byte
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestEncodeVectors(t *testing.T) {
	var zero, ff [PayloadSize]byte
	for i := range ff {
		ff[i] = 0xff
	}

	tests := []struct {
		name    string
		payload [PayloadSize]byte
		prefix  Prefix
		want    string
	}{
		{"zero", zero, AccountPubkey, "ak_11111111111111111111111111111111273Yts"},
		{"ff", ff, AccountPubkey, "ak_2wkBET2rRgE8pahuaczxKbmv7ciehqsne57F9gtzf1PVZS9BEY"},
		{"sequential", sequential(), AccountPubkey, "ak_16qJFWMMHFy3xDdLmvUeyc2S6FrWRhJP51HsvDYdz9d1FsYG"},
		{"name", sequential(), NameID, "nm_16qJFWMMHFy3xDdLmvUeyc2S6FrWRhJP51HsvDYdz9d1FsYG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.payload, tt.prefix)
			assert.Equal(t, tt.want, got)

			payload, prefix, err := Decode(got)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, payload)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestRoundTripRandom(t *testing.T) {
	for i := 0; i < 64; i++ {
		var payload [PayloadSize]byte
		_, err := rand.Read(payload[:])
		require.NoError(t, err)

		got, prefix, err := Decode(Encode(payload, AccountPubkey))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, AccountPubkey, prefix)
	}
}

func TestSingleCharacterChangeFails(t *testing.T) {
	addr := Encode(sequential(), AccountPubkey)
	body := addr[3:]

	for i := range body {
		next := alphabet[(strings.IndexByte(alphabet, body[i])+1)%len(alphabet)]
		mutated := addr[:3] + body[:i] + string(next) + body[i+1:]

		_, _, err := Decode(mutated)
		require.Error(t, err, "position %d", i)
		assert.True(t, errors.Is(err, ErrInvalidChecksum) || errors.Is(err, ErrInvalidEncoding),
			"position %d: %v", i, err)
	}

	// The final character only touches the checksum bytes.
	last := len(addr) - 1
	mutated := addr[:last] + string(alphabet[(strings.IndexByte(alphabet, addr[last])+1)%len(alphabet)])
	_, _, err := Decode(mutated)
	require.ErrorIs(t, err, ErrInvalidChecksum)
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode(sequential(), AccountPubkey)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"no separator", "ak" + valid[3:], ErrInvalidPrefix},
		{"unknown prefix", "th" + valid[2:], ErrInvalidPrefix},
		{"uppercase prefix", "AK" + valid[2:], ErrInvalidPrefix},
		{"empty", "", ErrInvalidPrefix},
		{"not base58", "ak_0OIl", ErrInvalidEncoding},
		{"too short", valid[:len(valid)-5], ErrInvalidEncoding},
		{"empty body", "ak_", ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromIDBytes(t *testing.T) {
	id, err := hex.DecodeString("01f75e53f57822227a58b463095d6dab657cab804574be62de0be1f95279d09037")
	require.NoError(t, err)

	addr, err := FromIDBytes(id)
	require.NoError(t, err)
	assert.Equal(t, "ak_2swhLkgBPeeADxVTAVCJnZLY5NZtCFiM93JxsEaMuC59euuFRQ", addr)

	id[0] = idTagName
	addr, err = FromIDBytes(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "nm_"))

	id[0] = 9
	_, err = FromIDBytes(id)
	require.ErrorIs(t, err, ErrInvalidPrefix)

	_, err = FromIDBytes(id[:32])
	require.ErrorIs(t, err, ErrInvalidEncoding)
}
