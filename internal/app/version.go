// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tillitis/ae-signer/apdu"
)

// ParseVersion parses the first three dot separated components of s,
// each a decimal number below 256. Any further components are ignored.
func ParseVersion(s string) (major, minor, patch uint8, err error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("version %q has %d components, want 3", s, len(parts))
	}

	var v [3]uint8
	for i := range v {
		n, err := strconv.ParseUint(parts[i], 10, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("ParseUint: %w", err)
		}
		v[i] = uint8(n)
	}

	return v[0], v[1], v[2], nil
}

func (d *Dispatcher) getVersion() ([]byte, error) {
	major, minor, patch, err := ParseVersion(d.version)
	if err != nil {
		return nil, fail(apdu.SwVersionParsingFail, err)
	}
	return []byte{0x00, major, minor, patch}, nil
}
