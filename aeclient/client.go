// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package aeclient talks to an aeternity signer: it frames requests,
// splits transactions into chunks and decodes the replies.
package aeclient

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tillitis/ae-signer/apdu"
)

const (
	// MaxMessageLength is the longest message or data payload that fits
	// in a single request next to the account index and length.
	MaxMessageLength = apdu.MaxDataLen - 8
	// MaxNetworkIDLength bounds the network id of a transaction.
	MaxNetworkIDLength = 32
	// MaxTxLength bounds a serialized transaction.
	MaxTxLength = 64 * 1024
)

// StatusError is a request the signer refused.
type StatusError struct {
	Ins apdu.Ins
	SW  apdu.StatusWord
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: signer replied %s", e.Ins, e.SW)
}

// IsDenied tells whether err is the signer reporting that the operator
// rejected the request.
func IsDenied(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.SW == apdu.SwDeny
}

type Client struct {
	rw io.ReadWriter
	mu sync.Mutex
}

// New returns a client speaking to the signer at the other end of rw.
func New(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

func (c *Client) exchange(ins apdu.Ins, p1 byte, data []byte) ([]byte, error) {
	frame, err := apdu.Request{CLA: apdu.CLA, INS: ins, P1: p1, Data: data}.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("MarshalBinary: %w", err)
	}
	if _, err := c.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("Write: %w", err)
	}

	resp, err := apdu.ReadResponse(c.rw)
	if err != nil {
		return nil, fmt.Errorf("ReadResponse: %w", err)
	}
	if !resp.OK() {
		return nil, &StatusError{Ins: ins, SW: resp.SW}
	}

	return resp.Data, nil
}

type Version struct {
	Major, Minor, Patch uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// GetVersion returns the version of the signer app.
func (c *Client) GetVersion() (Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.exchange(apdu.InsGetVersion, 0, nil)
	if err != nil {
		return Version{}, err
	}
	if len(reply) != 4 || reply[0] != 0 {
		return Version{}, fmt.Errorf("unexpected version reply %x", reply)
	}

	return Version{Major: reply[1], Minor: reply[2], Patch: reply[3]}, nil
}

// GetAddress returns the address of account. With confirm the signer
// shows it to the operator first, who may reject it.
func (c *Client) GetAddress(account uint32, confirm bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p1 := apdu.P1NoConfirm
	if confirm {
		p1 = apdu.P1Confirm
	}

	reply, err := c.exchange(apdu.InsGetAddress, p1, binary.BigEndian.AppendUint32(nil, account))
	if err != nil {
		return "", err
	}
	if len(reply) == 0 || int(reply[0]) != len(reply)-1 {
		return "", fmt.Errorf("malformed address reply of %d bytes", len(reply))
	}

	return string(reply[1:]), nil
}

func sized(account uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxMessageLength {
		return nil, fmt.Errorf("payload is %d bytes, max %d", len(payload), MaxMessageLength)
	}
	b := make([]byte, 0, 8+len(payload))
	b = binary.BigEndian.AppendUint32(b, account)
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...), nil
}

func signature(ins apdu.Ins, reply []byte) ([]byte, error) {
	if len(reply) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%s: reply is %d bytes, want a %d byte signature", ins, len(reply), ed25519.SignatureSize)
	}
	return reply, nil
}

// SignMessage asks the signer to sign msg as a personal message.
func (c *Client) SignMessage(account uint32, msg []byte) ([]byte, error) {
	return c.signSized(apdu.InsSignMsg, account, msg)
}

// SignData asks the signer to sign data as is.
func (c *Client) SignData(account uint32, data []byte) ([]byte, error) {
	return c.signSized(apdu.InsSignData, account, data)
}

func (c *Client) signSized(ins apdu.Ins, account uint32, payload []byte) ([]byte, error) {
	data, err := sized(account, payload)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.exchange(ins, 0, data)
	if err != nil {
		return nil, err
	}
	return signature(ins, reply)
}

// SignTransaction sends a serialized transaction to the signer and
// returns the signature over the network id and the transaction hash.
//
// The input for the first request is:
//
//	Description                    | Length
//	-------------------------------+---------
//	Account index (big endian)     | 4 bytes
//	Transaction length (big endian)| 4 bytes
//	Network id length              | 1 byte
//	Network id                     | <= 32 bytes
//	Transaction chunk              | arbitrary
//
// and every following request carries the next transaction chunk, each
// request filled up to 255 bytes.
func (c *Client) SignTransaction(account uint32, networkID, tx []byte) ([]byte, error) {
	if len(networkID) > MaxNetworkIDLength {
		return nil, fmt.Errorf("network id is %d bytes, max %d", len(networkID), MaxNetworkIDLength)
	}
	if len(tx) == 0 || len(tx) > MaxTxLength {
		return nil, fmt.Errorf("transaction is %d bytes, want 1..%d", len(tx), MaxTxLength)
	}

	payload := make([]byte, 0, 9+len(networkID)+len(tx))
	payload = binary.BigEndian.AppendUint32(payload, account)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(tx)))
	payload = append(payload, byte(len(networkID)))
	payload = append(payload, networkID...)
	payload = append(payload, tx...)

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		op    = apdu.P1FirstTx
		reply []byte
		err   error
	)
	for len(payload) > 0 {
		chunk := min(len(payload), apdu.MaxDataLen)

		reply, err = c.exchange(apdu.InsSignTx, op, payload[:chunk])
		if err != nil {
			return nil, err
		}

		payload = payload[chunk:]
		op = apdu.P1MoreTx

		if len(payload) > 0 && len(reply) != 0 {
			return nil, fmt.Errorf("signer replied %d bytes before the last chunk", len(reply))
		}
	}

	return signature(apdu.InsSignTx, reply)
}
