// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"github.com/tillitis/ae-signer/apdu"
)

// Instruction is a classified request. It is one of GetAddress,
// GetVersion, SignMsg, SignData or SignTx.
type Instruction interface {
	isInstruction()
}

type GetAddress struct {
	// Confirm asks for the address to be shown to the operator.
	Confirm bool
}

type GetVersion struct{}

type SignMsg struct{}

type SignData struct{}

type SignTx struct {
	// FirstChunk is set on the chunk carrying the transaction header.
	FirstChunk bool
}

func (GetAddress) isInstruction() {}
func (GetVersion) isInstruction() {}
func (SignMsg) isInstruction()    {}
func (SignData) isInstruction()   {}
func (SignTx) isInstruction()     {}

// ParseInstruction classifies req by its INS, P1 and P2 bytes. The
// instruction class is checked by the transport.
func ParseInstruction(req apdu.Request) (Instruction, error) {
	switch req.INS {
	case apdu.InsGetAddress, apdu.InsSignTx, apdu.InsGetVersion, apdu.InsSignMsg, apdu.InsSignData:
	default:
		return nil, failf(apdu.SwInsNotSupported, "instruction 0x%02x", byte(req.INS))
	}

	if req.P2 != 0 {
		return nil, failf(apdu.SwWrongP1P2, "%s with P2 0x%02x", req.INS, req.P2)
	}

	switch {
	case req.INS == apdu.InsGetAddress && req.P1 == apdu.P1NoConfirm:
		return GetAddress{}, nil
	case req.INS == apdu.InsGetAddress && req.P1 == apdu.P1Confirm:
		return GetAddress{Confirm: true}, nil
	case req.INS == apdu.InsSignTx && req.P1 == apdu.P1FirstTx:
		return SignTx{FirstChunk: true}, nil
	case req.INS == apdu.InsSignTx && req.P1 == apdu.P1MoreTx:
		return SignTx{}, nil
	case req.INS == apdu.InsGetVersion && req.P1 == 0:
		return GetVersion{}, nil
	case req.INS == apdu.InsSignMsg && req.P1 == 0:
		return SignMsg{}, nil
	case req.INS == apdu.InsSignData && req.P1 == 0:
		return SignData{}, nil
	}

	return nil, failf(apdu.SwWrongP1P2, "%s with P1 0x%02x", req.INS, req.P1)
}
