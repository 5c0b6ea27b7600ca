// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

import (
	"errors"
	"fmt"

	"github.com/tillitis/ae-signer/apdu"
)

// Error is a request failure together with the status word reported to
// the host.
type Error struct {
	SW  apdu.StatusWord
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.SW.String()
	}
	return fmt.Sprintf("%s: %v", e.SW, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(sw apdu.StatusWord, err error) *Error {
	return &Error{SW: sw, Err: err}
}

func failf(sw apdu.StatusWord, format string, a ...any) *Error {
	return &Error{SW: sw, Err: fmt.Errorf(format, a...)}
}

// StatusOf returns the status word for err. Errors that do not carry
// one are reported as a parsing failure.
func StatusOf(err error) apdu.StatusWord {
	if err == nil {
		return apdu.SwOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.SW
	}
	return apdu.SwTxParsingFail
}
