// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

//go:build windows

package ui

import "github.com/tillitis/ae-signer/internal/app"

// Default returns the pinentry approver.
func Default(pinentryProgram string) app.Approver {
	return &Pinentry{Program: pinentryProgram}
}
