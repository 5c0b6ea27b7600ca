// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package log

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, name := range Levels {
		_, err := ParseLevel(name)
		require.NoError(t, err, name)
	}

	lvl, err := ParseLevel("trace")
	require.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)
}

func TestInitJSON(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, Init(os.Stderr, "info", false))
	})

	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "warn", true))

	App.Info().Msg("dropped")
	App.Warn().Str("sw", "Deny").Msg("request failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "app", line["component"])
	assert.Equal(t, "Deny", line["sw"])
	assert.Equal(t, "warn", line["level"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	require.Error(t, Init(&bytes.Buffer{}, "loud", false))
}
