// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package apdu

import "fmt"

// StatusWord is the two byte status ending every response. The values
// are part of the wire contract with host software.
type StatusWord uint16

const (
	SwDeny               StatusWord = 0x6985
	SwWrongP1P2          StatusWord = 0x6a86
	SwInsNotSupported    StatusWord = 0x6d00
	SwClaNotSupported    StatusWord = 0x6e00
	SwWrongApduLength    StatusWord = 0x6e03
	SwTxDisplayFail      StatusWord = 0xb001
	SwAddrDisplayFail    StatusWord = 0xb002
	SwTxWrongLength      StatusWord = 0xb004
	SwTxParsingFail      StatusWord = 0xb005
	SwTxHashFail         StatusWord = 0xb006
	SwBadState           StatusWord = 0xb007
	SwTxSignFail         StatusWord = 0xb008
	SwKeyDeriveFail      StatusWord = 0xb009
	SwVersionParsingFail StatusWord = 0xb00a
	SwMsgWrongLength     StatusWord = 0xb100
	SwMsgHashFail        StatusWord = 0xb101
	SwMsgSignFail        StatusWord = 0xb102
	SwOK                 StatusWord = 0x9000
)

var statusNames = map[StatusWord]string{
	SwDeny:               "Deny",
	SwWrongP1P2:          "WrongP1P2",
	SwInsNotSupported:    "InsNotSupported",
	SwClaNotSupported:    "ClaNotSupported",
	SwWrongApduLength:    "WrongApduLength",
	SwTxDisplayFail:      "TxDisplayFail",
	SwAddrDisplayFail:    "AddrDisplayFail",
	SwTxWrongLength:      "TxWrongLength",
	SwTxParsingFail:      "TxParsingFail",
	SwTxHashFail:         "TxHashFail",
	SwBadState:           "BadState",
	SwTxSignFail:         "TxSignFail",
	SwKeyDeriveFail:      "KeyDeriveFail",
	SwVersionParsingFail: "VersionParsingFail",
	SwMsgWrongLength:     "MsgWrongLength",
	SwMsgHashFail:        "MsgHashFail",
	SwMsgSignFail:        "MsgSignFail",
	SwOK:                 "OK",
}

func (sw StatusWord) String() string {
	if name, ok := statusNames[sw]; ok {
		return fmt.Sprintf("%s (0x%04x)", name, uint16(sw))
	}
	return fmt.Sprintf("0x%04x", uint16(sw))
}
