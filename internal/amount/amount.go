// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package amount renders fixed-point token amounts for display.
package amount

import (
	"strings"

	"github.com/holiman/uint256"
)

// AEDecimals is the number of decimals of one AE in aettos.
const AEDecimals = 18

// Format renders v, an integer count of the smallest unit, as a decimal
// number with the given number of decimals. The integer part keeps at
// least one digit, trailing fractional zeros are dropped, and the point
// is omitted when nothing follows it.
func Format(v *uint256.Int, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}

	digits := "0"
	if v != nil {
		digits = v.Dec()
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	split := len(digits) - decimals
	whole := strings.TrimLeft(digits[:split], "0")
	if whole == "" {
		whole = "0"
	}

	frac := strings.TrimRight(digits[split:], "0")
	if frac == "" {
		return whole
	}

	return whole + "." + frac
}

// FormatAE renders an amount in aettos as AE.
func FormatAE(v *uint256.Int) string {
	return Format(v, AEDecimals)
}
