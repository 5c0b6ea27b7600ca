// Copyright (C) 2022, 2023 - Tillitis AB
// SPDX-License-Identifier: GPL-2.0-only

// Package apdu implements the framing of the signer command channel:
// requests carrying an instruction and up to one APDU worth of data,
// and responses carrying reply data followed by a status word.
package apdu

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// CLA is the only instruction class the signer accepts.
const CLA byte = 0xe0

// MaxDataLen is the largest data field of a single request.
const MaxDataLen = 255

type Ins byte

const (
	InsGetAddress Ins = 0x02
	InsSignTx     Ins = 0x04
	InsGetVersion Ins = 0x06
	InsSignMsg    Ins = 0x08
	InsSignData   Ins = 0x0a
)

func (i Ins) String() string {
	switch i {
	case InsGetAddress:
		return "GetAddress"
	case InsSignTx:
		return "SignTx"
	case InsGetVersion:
		return "GetVersion"
	case InsSignMsg:
		return "SignMsg"
	case InsSignData:
		return "SignData"
	}
	return fmt.Sprintf("Ins(0x%02x)", byte(i))
}

// Parameter values understood by the instructions.
const (
	P1NoConfirm byte = 0x00
	P1Confirm   byte = 0x01
	P1FirstTx   byte = 0x00
	P1MoreTx    byte = 0x80
)

type constError string

func (err constError) Error() string {
	return string(err)
}

const (
	ErrFrameTooLong = constError("frame data longer than 255 bytes")
	ErrShortFrame   = constError("response frame shorter than its status word")
)

// Request is one command sent to the signer.
type Request struct {
	CLA  byte
	INS  Ins
	P1   byte
	P2   byte
	Data []byte
}

// MarshalBinary encodes the request as a frame.
//
// Request frame:
//
//	[0]    CLA, instruction class. Always 0xe0.
//	[1]    INS, instruction code.
//	[2]    P1, first instruction parameter.
//	[3]    P2, second instruction parameter.
//	[4..5] Lc, length of the data field, big endian. At most 255.
//	[6..]  data, Lc bytes.
//
// A two byte Lc lets a reader skip past an oversized data field and keep
// the stream in sync, even though such a request is always refused.
func (r Request) MarshalBinary() ([]byte, error) {
	if len(r.Data) > MaxDataLen {
		return nil, ErrFrameTooLong
	}

	b := make([]byte, 6, 6+len(r.Data))
	b[0] = r.CLA
	b[1] = byte(r.INS)
	b[2] = r.P1
	b[3] = r.P2
	binary.BigEndian.PutUint16(b[4:6], uint16(len(r.Data)))

	return append(b, r.Data...), nil
}

// ReadRequest reads one request frame from r. If the data field is
// longer than MaxDataLen the whole frame is still consumed, the request
// header is returned and the error is ErrFrameTooLong. A stream ending
// between frames is io.EOF, one ending inside a frame is
// io.ErrUnexpectedEOF.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}

	req := Request{
		CLA: hdr[0],
		INS: Ins(hdr[1]),
		P1:  hdr[2],
		P2:  hdr[3],
	}

	lc := int(binary.BigEndian.Uint16(hdr[4:6]))
	data := make([]byte, lc)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Request{}, err
	}

	if lc > MaxDataLen {
		return req, ErrFrameTooLong
	}
	req.Data = data

	return req, nil
}

// Response is the signer's reply to one request.
type Response struct {
	Data []byte
	SW   StatusWord
}

// OK tells whether the response carries the success status word.
func (r Response) OK() bool {
	return r.SW == SwOK
}

// WriteResponse writes resp as a frame:
//
//	[0..1] Le, length of the data field, big endian.
//	[2..]  data, Le bytes.
//	[..]   SW, status word, big endian.
func WriteResponse(w io.Writer, resp Response) error {
	if len(resp.Data) > 0xffff {
		return fmt.Errorf("response data too long: %d bytes", len(resp.Data))
	}

	b := make([]byte, 2, 2+len(resp.Data)+2)
	binary.BigEndian.PutUint16(b, uint16(len(resp.Data)))
	b = append(b, resp.Data...)
	b = binary.BigEndian.AppendUint16(b, uint16(resp.SW))

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("Write: %w", err)
	}

	return nil
}

// ReadResponse reads one response frame from r.
func ReadResponse(r io.Reader) (Response, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Response{}, fmt.Errorf("ReadFull: %w", err)
	}

	rest := make([]byte, int(binary.BigEndian.Uint16(hdr[:]))+2)
	if _, err := io.ReadFull(r, rest); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Response{}, fmt.Errorf("ReadFull: %w", err)
	}

	n := len(rest) - 2
	resp := Response{SW: StatusWord(binary.BigEndian.Uint16(rest[n:]))}
	if n > 0 {
		resp.Data = rest[:n]
	}

	return resp, nil
}

// Dump returns a hexdump of d preceded by the explaining string s, for
// debug logging of frames.
func Dump(s string, d []byte) string {
	if len(d) == 0 {
		return fmt.Sprintf("%s: no data", s)
	}
	return fmt.Sprintf("%s (%d bytes):\n%s", s, len(d), hex.Dump(d))
}
