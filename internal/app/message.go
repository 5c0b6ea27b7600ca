// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"unicode"
	"unicode/utf8"

	"github.com/tillitis/ae-signer/aehash"
	"github.com/tillitis/ae-signer/apdu"
)

// MaxDataDisplayLength is the longest data payload shown to the
// operator. Longer payloads are reviewed by title only.
const MaxDataDisplayLength = 50

// splitSized splits a [account:4][len:4][payload] request body.
func splitSized(data []byte) (uint32, []byte, error) {
	if len(data) < 8 {
		return 0, nil, failf(apdu.SwMsgWrongLength, "request is %d bytes, want at least 8", len(data))
	}

	account := binary.BigEndian.Uint32(data[0:4])
	n := binary.BigEndian.Uint32(data[4:8])
	payload := data[8:]
	if uint64(n) != uint64(len(payload)) {
		return 0, nil, failf(apdu.SwMsgWrongLength, "declared length %d, got %d bytes", n, len(payload))
	}

	return account, payload, nil
}

// printable tells whether b is UTF-8 text made only of graphic runes
// and spaces, which a terminal prints rather than acts on.
func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r != ' ' && !unicode.IsGraphic(r) {
			return false
		}
	}
	return true
}

// renderText shows printable text as is and anything else, line breaks
// and escape sequences included, as hex.
func renderText(b []byte) string {
	if printable(b) {
		return string(b)
	}
	return "0x" + hex.EncodeToString(b)
}

// isPrintableASCII reports whether b holds only ASCII from space to
// tilde.
func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// renderData returns the fields shown for a data payload.
func renderData(data []byte) []Field {
	switch {
	case len(data) > MaxDataDisplayLength:
		return nil
	case isPrintableASCII(data):
		return []Field{{Name: "Data", Value: string(data)}}
	default:
		return []Field{{Name: "Data", Value: base64.StdEncoding.EncodeToString(data)}}
	}
}

func (d *Dispatcher) signMessage(data []byte) ([]byte, error) {
	account, msg, err := splitSized(data)
	if err != nil {
		return nil, err
	}

	r := Review{
		Kind:   ReviewMessage,
		Title:  "Sign message",
		Fields: []Field{{Name: "Message", Value: renderText(msg)}},
		Verb:   "Sign message",
	}
	if err := d.review(r, apdu.SwTxDisplayFail); err != nil {
		return nil, err
	}

	digest, err := aehash.MessageDigest(msg)
	if err != nil {
		return nil, fail(apdu.SwMsgHashFail, err)
	}

	return d.sign(account, digest, apdu.SwMsgSignFail)
}

func (d *Dispatcher) signData(data []byte) ([]byte, error) {
	account, payload, err := splitSized(data)
	if err != nil {
		return nil, err
	}

	r := Review{
		Kind:   ReviewData,
		Title:  "Sign data",
		Fields: renderData(payload),
		Verb:   "Sign data",
	}
	if err := d.review(r, apdu.SwTxDisplayFail); err != nil {
		return nil, err
	}

	return d.sign(account, payload, apdu.SwMsgSignFail)
}
