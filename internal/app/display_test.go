// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillitis/ae-signer/apdu"
)

// overwrite moves the cursor up over the genuine summary lines and
// prints fake ones in their place.
const overwrite = "\x1b[3A\x1b[2K\r  Amount: 0.0001\n\x1b[2K  Destination: ak_fake"

// assertNoControl fails if any field would make a terminal do something
// other than print.
func assertNoControl(t *testing.T, fields []Field) {
	t.Helper()
	for _, f := range fields {
		for _, r := range f.Name + f.Value {
			assert.False(t, r < 0x20 || (r >= 0x7f && r <= 0x9f), "field %s holds control rune %U", f.Name, r)
		}
	}
}

func TestPrintable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Lorem ipsum dolor sit amet", true},
		{"höj 日本", true},
		{"tab\there", false},
		{"line\nbreak", false},
		{"\rcarriage", false},
		{"\x1b[2J", false},
		{"c1 \u009b2J", false},
		{"bidi \u202eevil", false},
		{"\xff\xfe", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, printable([]byte(tt.in)), "%q", tt.in)
	}
}

func TestSignTxPayloadControl(t *testing.T) {
	d, _, approver := newTestDispatcher("1.0.0")
	s := defaultSpend(t)
	s.payload = []byte(overwrite)
	tx := s.encode(t)

	resps := run(d, chunks(txHeader(0, len(tx), "ae_mainnet"), tx, apdu.MaxDataLen))
	require.Equal(t, apdu.SwOK, resps[len(resps)-1].SW)

	require.Len(t, approver.reviews, 1)
	fields := approver.reviews[0].Fields
	assertNoControl(t, fields)
	assert.Equal(t, Field{Name: "Payload", Value: "0x" + hex.EncodeToString([]byte(overwrite))}, fields[len(fields)-1])
	assert.Equal(t, Field{Name: "Amount", Value: "1.23"}, fields[0])
}

func TestSignMessageControl(t *testing.T) {
	d, _, approver := newTestDispatcher("1.0.0")

	resp := d.Handle(request(apdu.InsSignMsg, 0, sized(0, []byte(overwrite))))
	require.Equal(t, apdu.SwOK, resp.SW)

	require.Len(t, approver.reviews, 1)
	assertNoControl(t, approver.reviews[0].Fields)
	assert.Equal(t, "0x"+hex.EncodeToString([]byte(overwrite)), approver.reviews[0].Fields[0].Value)
}

func TestSignDataControl(t *testing.T) {
	d, _, approver := newTestDispatcher("1.0.0")

	for _, data := range []string{"\x1b[2J", "a\rb", "del\x7f"} {
		approver.reviews = nil
		resp := d.Handle(request(apdu.InsSignData, 0, sized(0, []byte(data))))
		require.Equal(t, apdu.SwOK, resp.SW)
		require.Len(t, approver.reviews, 1)
		assertNoControl(t, approver.reviews[0].Fields)
	}
	assert.Equal(t, []Field{{Name: "Data", Value: "ZGVsfw=="}}, approver.reviews[0].Fields)
}
