// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"fmt"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"github.com/tillitis/ae-signer/aeaddr"
	"github.com/tillitis/ae-signer/aerlp"
	"github.com/tillitis/ae-signer/apdu"
	"github.com/tillitis/ae-signer/internal/amount"
)

const spendTxTag = 0x0c

// Field positions of a serialized spend transaction.
const (
	spendTag = iota
	spendVersion
	spendSender
	spendRecipient
	spendAmount
	spendFee
	spendTTL
	spendNonce
	spendPayload
	spendFields
)

// TxSummary is what the operator reviews before a spend transaction is
// signed.
type TxSummary struct {
	Sender    string
	Recipient string
	Amount    *uint256.Int
	Fee       *uint256.Int
	Payload   string
}

// Fields lists the summary for review. An empty payload is not shown,
// one that is not printable text is shown as hex.
func (s TxSummary) Fields() []Field {
	fields := []Field{
		{Name: "Amount", Value: amount.FormatAE(s.Amount)},
		{Name: "Fee", Value: amount.FormatAE(s.Fee)},
		{Name: "Destination", Value: s.Recipient},
	}
	if s.Payload != "" {
		fields = append(fields, Field{Name: "Payload", Value: renderText([]byte(s.Payload))})
	}
	return fields
}

func parseErr(field string, err error) *Error {
	return fail(apdu.SwTxParsingFail, fmt.Errorf("%s: %w", field, err))
}

func parseSpendTx(item aerlp.Item) (TxSummary, error) {
	fields, err := item.List()
	if err != nil {
		return TxSummary{}, parseErr("transaction", err)
	}
	if len(fields) < spendFields {
		return TxSummary{}, failf(apdu.SwTxParsingFail, "spend transaction has %d fields, want %d", len(fields), spendFields)
	}

	tag, err := fields[spendTag].Uint8()
	if err != nil {
		return TxSummary{}, parseErr("tag", err)
	}
	if tag != spendTxTag {
		return TxSummary{}, failf(apdu.SwDeny, "transaction type %d is not supported", tag)
	}

	var s TxSummary

	if s.Sender, err = idField(fields[spendSender]); err != nil {
		return TxSummary{}, parseErr("sender", err)
	}
	if s.Recipient, err = idField(fields[spendRecipient]); err != nil {
		return TxSummary{}, parseErr("recipient", err)
	}
	if s.Amount, err = fields[spendAmount].Uint256(); err != nil {
		return TxSummary{}, parseErr("amount", err)
	}
	if s.Fee, err = fields[spendFee].Uint256(); err != nil {
		return TxSummary{}, parseErr("fee", err)
	}

	payload, err := fields[spendPayload].Bytes()
	if err != nil {
		return TxSummary{}, parseErr("payload", err)
	}
	if !utf8.Valid(payload) {
		return TxSummary{}, failf(apdu.SwTxParsingFail, "payload is not UTF-8")
	}
	s.Payload = string(payload)

	return s, nil
}

func idField(it aerlp.Item) (string, error) {
	b, err := it.Bytes()
	if err != nil {
		return "", err
	}
	return aeaddr.FromIDBytes(b)
}

// signTx feeds one chunk to the transaction context. When the chunk
// completes the transaction it is reviewed and signed, otherwise the
// reply is empty.
func (d *Dispatcher) signTx(first bool, chunk []byte) ([]byte, error) {
	var err error
	if first {
		err = d.tx.Start(chunk)
	} else {
		err = d.tx.Continue(chunk)
	}
	if err != nil {
		d.tx.Reset()
		return nil, err
	}

	if !d.tx.Complete() {
		d.log.Debug().
			Int("received", d.tx.Received()).
			Uint32("declared", d.tx.Header().Length).
			Msg("transaction chunk")
		return nil, nil
	}
	defer d.tx.Reset()

	summary, err := d.tx.Summary()
	if err != nil {
		return nil, err
	}

	r := Review{
		Kind:   ReviewTransaction,
		Title:  "Review transaction to send AE",
		Fields: summary.Fields(),
		Verb:   "Sign transaction",
	}
	if err := d.review(r, apdu.SwTxDisplayFail); err != nil {
		return nil, err
	}

	msg, err := d.tx.Signable()
	if err != nil {
		return nil, err
	}

	return d.sign(d.tx.Header().Account, msg, apdu.SwTxSignFail)
}
