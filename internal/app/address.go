// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"encoding/binary"

	"github.com/tillitis/ae-signer/aeaddr"
	"github.com/tillitis/ae-signer/apdu"
)

// Address returns the textual account address of account.
func (d *Dispatcher) Address(account uint32) (string, error) {
	pub, err := d.publicKey(account)
	if err != nil {
		return "", err
	}

	var payload [aeaddr.PayloadSize]byte
	copy(payload[:], pub)

	return aeaddr.Encode(payload, aeaddr.AccountPubkey), nil
}

// getAddress replies [len][address] for the account in data.
func (d *Dispatcher) getAddress(confirm bool, data []byte) ([]byte, error) {
	if len(data) != 4 {
		return nil, failf(apdu.SwWrongApduLength, "account index is %d bytes, want 4", len(data))
	}
	account := binary.BigEndian.Uint32(data)

	addr, err := d.Address(account)
	if err != nil {
		return nil, err
	}

	if confirm {
		r := Review{
			Kind:   ReviewAddress,
			Title:  "Confirm address",
			Fields: []Field{{Name: "Address", Value: addr}},
			Verb:   "Confirm",
		}
		if err := d.review(r, apdu.SwAddrDisplayFail); err != nil {
			return nil, err
		}
	}

	resp := make([]byte, 0, 1+len(addr))
	resp = append(resp, byte(len(addr)))

	return append(resp, addr...), nil
}
