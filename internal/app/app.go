// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package app is the signer's command processor. It classifies requests,
// keeps the state of chunked transaction signing between requests, asks
// the operator to approve what is about to be signed and signs it with
// a derived account key.
package app

import (
	"crypto"
	"crypto/ed25519"

	"github.com/rs/zerolog"
	"github.com/tillitis/ae-signer/apdu"
	"github.com/tillitis/ae-signer/internal/log"
)

// Deriver provides the signing key of an account. The returned signer
// has an ed25519.PublicKey and signs unhashed messages.
type Deriver interface {
	Derive(account uint32) (crypto.Signer, error)
}

// Dispatcher handles requests one at a time. It is not safe for
// concurrent use.
type Dispatcher struct {
	keys     Deriver
	approver Approver
	status   StatusReporter
	version  string
	tx       *TxContext
	log      zerolog.Logger
}

type Option func(*Dispatcher)

// WithStatusReporter reports the outcome of every approval.
func WithStatusReporter(s StatusReporter) Option {
	return func(d *Dispatcher) {
		d.status = s
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// New returns a Dispatcher signing with keys from keys after approval
// by approver. The version string, in major.minor.patch form, is
// reported by GetVersion.
func New(keys Deriver, approver Approver, version string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		keys:     keys,
		approver: approver,
		version:  version,
		tx:       NewTxContext(),
		log:      log.App,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one request and returns the response to send. A
// failed request returns only a status word.
func (d *Dispatcher) Handle(req apdu.Request) apdu.Response {
	d.log.Debug().
		Stringer("ins", req.INS).
		Uint8("p1", req.P1).
		Uint8("p2", req.P2).
		Int("len", len(req.Data)).
		Msg("request")

	ins, err := ParseInstruction(req)
	if err == nil {
		var data []byte
		data, err = d.dispatch(ins, req.Data)
		if err == nil {
			return apdu.Response{Data: data, SW: apdu.SwOK}
		}
	}

	sw := StatusOf(err)
	d.log.Warn().
		Stringer("ins", req.INS).
		Stringer("sw", sw).
		Err(err).
		Msg("request failed")

	return apdu.Response{SW: sw}
}

func (d *Dispatcher) dispatch(ins Instruction, data []byte) ([]byte, error) {
	switch ins := ins.(type) {
	case GetAddress:
		return d.getAddress(ins.Confirm, data)
	case GetVersion:
		return d.getVersion()
	case SignMsg:
		return d.signMessage(data)
	case SignData:
		return d.signData(data)
	case SignTx:
		return d.signTx(ins.FirstChunk, data)
	}
	return nil, failf(apdu.SwInsNotSupported, "instruction %T", ins)
}

// review asks the operator about r. A failure to show it is reported
// with displayFail, a rejection with Deny.
func (d *Dispatcher) review(r Review, displayFail apdu.StatusWord) error {
	approved, err := d.approver.Review(r)
	if err != nil {
		return fail(displayFail, err)
	}

	if d.status != nil {
		d.status.Report(r.Kind, approved)
	}
	if !approved {
		d.log.Info().Stringer("kind", r.Kind).Msg("rejected by operator")
		return failf(apdu.SwDeny, "%s rejected by operator", r.Kind)
	}

	d.log.Info().Stringer("kind", r.Kind).Msg("approved by operator")
	return nil
}

// publicKey derives the key of account and returns its public half.
func (d *Dispatcher) publicKey(account uint32) (ed25519.PublicKey, error) {
	key, err := d.keys.Derive(account)
	if err != nil {
		return nil, fail(apdu.SwKeyDeriveFail, err)
	}

	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok || len(pub) != ed25519.PublicKeySize {
		return nil, failf(apdu.SwKeyDeriveFail, "account %d has no Ed25519 public key", account)
	}

	return pub, nil
}

// sign signs msg with the key of account. Signing failures are
// reported with signFail.
func (d *Dispatcher) sign(account uint32, msg []byte, signFail apdu.StatusWord) ([]byte, error) {
	key, err := d.keys.Derive(account)
	if err != nil {
		return nil, fail(apdu.SwKeyDeriveFail, err)
	}

	// The Ed25519 signature must be made over the unhashed message.
	sig, err := key.Sign(nil, msg, crypto.Hash(0))
	if err != nil {
		return nil, fail(signFail, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, failf(signFail, "signature is %d bytes", len(sig))
	}

	return sig, nil
}
