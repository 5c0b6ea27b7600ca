// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package amount

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     string
	}{
		{"0", 18, "0"},
		{"1", 18, "0.000000000000000001"},
		{"1000000000000000000", 18, "1"},
		{"150000000000000000", 18, "0.15"},
		{"1230000000000000000", 18, "1.23"},
		{"16820000000000", 18, "0.00001682"},
		{"20000000000000000000", 18, "20"},
		{"123456789", 0, "123456789"},
		{"100", 2, "1"},
		{"105", 2, "1.05"},
		{"5", 2, "0.05"},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", 18,
			"115792089237316195423570985008687907853269984665640564039457.584007913129639935"},
	}
	for _, tt := range tests {
		v, err := uint256.FromDecimal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Format(v, tt.decimals), "Format(%s, %d)", tt.in, tt.decimals)
	}
}

func TestFormatNil(t *testing.T) {
	assert.Equal(t, "0", FormatAE(nil))
	assert.Equal(t, "0", Format(uint256.NewInt(0), 0))
}

// Parsing the display string back must give the original value.
func TestFormatProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		v := new(uint256.Int).SetUint64(r.Uint64())
		v.Mul(v, uint256.NewInt(uint64(r.Intn(1000))+1))
		decimals := r.Intn(25)

		s := Format(v, decimals)
		whole, frac, hasPoint := strings.Cut(s, ".")

		require.NotEmpty(t, whole)
		if len(whole) > 1 {
			assert.NotEqual(t, byte('0'), whole[0], s)
		}
		if hasPoint {
			require.NotEmpty(t, frac, s)
			assert.NotEqual(t, byte('0'), frac[len(frac)-1], s)
			assert.LessOrEqual(t, len(frac), decimals, s)
		}

		back := whole + frac + strings.Repeat("0", decimals-len(frac))
		got, err := uint256.FromDecimal(strings.TrimLeft(back, "0") + "0")
		require.NoError(t, err)
		want := new(uint256.Int).Mul(v, uint256.NewInt(10))
		assert.Equal(t, want, got, "%s with %d decimals", v.Dec(), decimals)
	}
}
