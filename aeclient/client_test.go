// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package aeclient

import (
	"crypto/ed25519"
	"encoding/hex"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillitis/ae-signer/aeaddr"
	"github.com/tillitis/ae-signer/aehash"
	"github.com/tillitis/ae-signer/apdu"
	"github.com/tillitis/ae-signer/internal/app"
	"github.com/tillitis/ae-signer/internal/keys"
	"github.com/tillitis/ae-signer/internal/transport"
)

const (
	mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	account0 = "ak_21SBPc3yHP7bpQDvD1KMKzZZEgLtSXpDsK97LTjVwjiskra6Ka"
	account1 = "ak_iV7sCUsuKZytEEBEsX9N2K37m26X132LegogrgJEWzzPVjmmS"
	idHex    = "01f75e53f57822227a58b463095d6dab657cab804574be62de0be1f95279d09037"
)

type operator struct {
	mu      sync.Mutex
	approve bool
	reviews []app.Review
}

func (o *operator) Review(r app.Review) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reviews = append(o.reviews, r)
	return o.approve, nil
}

func (o *operator) seen() []app.Review {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]app.Review{}, o.reviews...)
}

// newPair connects a client to a signer backed by the test mnemonic.
func newPair(t *testing.T) (*Client, *operator) {
	t.Helper()

	seed, err := keys.SeedFromMnemonic(mnemonic, "")
	require.NoError(t, err)

	op := &operator{approve: true}
	d := app.New(seed, op, "1.4.2", app.WithLogger(zerolog.Nop()))

	srv, cli := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- transport.NewServer(d).ServeConn(srv)
	}()
	t.Cleanup(func() {
		_ = cli.Close()
		assert.NoError(t, <-done)
		_ = srv.Close()
	})

	return New(cli), op
}

func publicKey(t *testing.T, addr string) ed25519.PublicKey {
	t.Helper()
	payload, prefix, err := aeaddr.Decode(addr)
	require.NoError(t, err)
	require.Equal(t, aeaddr.AccountPubkey, prefix)
	return payload[:]
}

func spendTx(t *testing.T, payload string) []byte {
	t.Helper()
	id, err := hex.DecodeString(idHex)
	require.NoError(t, err)
	tx, err := rlp.EncodeToBytes([]any{
		uint64(12), uint64(1), id, id,
		big.NewInt(0x1111d67bb1bb0000), big.NewInt(0x0f4c36200800),
		uint64(0), uint64(10), []byte(payload),
	})
	require.NoError(t, err)
	return tx
}

func TestGetVersion(t *testing.T) {
	c, _ := newPair(t)

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, Version{1, 4, 2}, v)
	assert.Equal(t, "1.4.2", v.String())
}

func TestGetAddress(t *testing.T) {
	c, op := newPair(t)

	addr, err := c.GetAddress(0, false)
	require.NoError(t, err)
	assert.Equal(t, account0, addr)

	addr, err = c.GetAddress(1, true)
	require.NoError(t, err)
	assert.Equal(t, account1, addr)

	reviews := op.seen()
	require.Len(t, reviews, 1)
	assert.Equal(t, app.ReviewAddress, reviews[0].Kind)
}

func TestGetAddressRejected(t *testing.T) {
	c, op := newPair(t)
	op.approve = false

	_, err := c.GetAddress(0, true)
	require.Error(t, err)
	assert.True(t, IsDenied(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apdu.InsGetAddress, se.Ins)
}

func TestGetAddressOutOfRange(t *testing.T) {
	c, _ := newPair(t)

	_, err := c.GetAddress(1<<31, false)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apdu.SwKeyDeriveFail, se.SW)
	assert.False(t, IsDenied(err))
}

func TestSignMessage(t *testing.T) {
	c, op := newPair(t)
	msg := []byte("Lorem ipsum dolor sit amet")

	sig, err := c.SignMessage(0, msg)
	require.NoError(t, err)

	digest, err := aehash.MessageDigest(msg)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(publicKey(t, account0), digest, sig))

	reviews := op.seen()
	require.Len(t, reviews, 1)
	assert.Equal(t, app.ReviewMessage, reviews[0].Kind)
}

func TestSignData(t *testing.T) {
	c, _ := newPair(t)
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	sig, err := c.SignData(1, data)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(publicKey(t, account1), data, sig))
}

func TestSignTooLong(t *testing.T) {
	c, op := newPair(t)

	_, err := c.SignMessage(0, make([]byte, MaxMessageLength+1))
	require.Error(t, err)
	_, err = c.SignData(0, make([]byte, MaxMessageLength+1))
	require.Error(t, err)
	assert.Empty(t, op.seen())

	_, err = c.SignData(0, make([]byte, MaxMessageLength))
	require.NoError(t, err)
}

func TestSignTransaction(t *testing.T) {
	for _, payload := range []string{"Lorem ipsum dolor sit amet", strings.Repeat("ae", 700)} {
		t.Run("", func(t *testing.T) {
			c, op := newPair(t)
			tx := spendTx(t, payload)

			sig, err := c.SignTransaction(0, []byte("ae_mainnet"), tx)
			require.NoError(t, err)

			digest, err := aehash.TxDigest(tx)
			require.NoError(t, err)
			signable := aehash.TxSignable([]byte("ae_mainnet"), digest)
			assert.True(t, ed25519.Verify(publicKey(t, account0), signable, sig))

			reviews := op.seen()
			require.Len(t, reviews, 1)
			assert.Equal(t, app.ReviewTransaction, reviews[0].Kind)
		})
	}
}

func TestSignTransactionRejected(t *testing.T) {
	c, op := newPair(t)
	op.approve = false

	_, err := c.SignTransaction(0, []byte("ae_uat"), spendTx(t, strings.Repeat("x", 600)))
	assert.True(t, IsDenied(err))

	// The signer is ready for a new transaction after a rejection.
	op.approve = true
	_, err = c.SignTransaction(0, []byte("ae_uat"), spendTx(t, "again"))
	require.NoError(t, err)
}

func TestSignTransactionLimits(t *testing.T) {
	c, op := newPair(t)

	_, err := c.SignTransaction(0, make([]byte, MaxNetworkIDLength+1), spendTx(t, ""))
	require.Error(t, err)
	_, err = c.SignTransaction(0, []byte("ae_mainnet"), nil)
	require.Error(t, err)
	_, err = c.SignTransaction(0, []byte("ae_mainnet"), make([]byte, MaxTxLength+1))
	require.Error(t, err)
	assert.Empty(t, op.seen())
}
