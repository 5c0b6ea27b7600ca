// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

//go:build unix

package transport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillitis/ae-signer/apdu"
)

func TestListenAndDial(t *testing.T) {
	// Socket paths are short on some systems, so avoid t.TempDir().
	dir, err := os.MkdirTemp("", "ae")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "sock")

	l, err := Listen(path)
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Mode().Perm()&0o077)

	done := make(chan error, 1)
	go func() {
		done <- NewServer(&echo{}).Serve(l)
	}()

	conn, err := Dial(path)
	require.NoError(t, err)

	resp := roundTrip(t, conn, frame(t, apdu.Request{CLA: apdu.CLA, INS: apdu.InsSignData, Data: []byte("ok")}))
	assert.Equal(t, apdu.Response{Data: []byte("ok"), SW: apdu.SwOK}, resp)

	require.NoError(t, conn.Close())
	require.NoError(t, l.Close())
	assert.NoError(t, <-done)
}
