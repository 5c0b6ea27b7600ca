// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package ui holds the surfaces on which the operator reviews and
// approves what the signer is about to sign.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/tillitis/ae-signer/internal/app"
)

// Approver names accepted by New.
const (
	NameDefault  = ""
	NameConsole  = "console"
	NamePinentry = "pinentry"
	NameAuto     = "auto"
)

var Names = []string{NameConsole, NamePinentry, NameAuto}

// New returns the approver called name. The empty name selects the
// platform default. pinentryProgram overrides the pinentry binary.
func New(name, pinentryProgram string) (app.Approver, error) {
	switch name {
	case NameDefault:
		return Default(pinentryProgram), nil
	case NameConsole:
		return NewConsole(), nil
	case NamePinentry:
		return &Pinentry{Program: pinentryProgram}, nil
	case NameAuto:
		return AutoApprove{}, nil
	}
	return nil, fmt.Errorf("unknown approver %q, want one of %s", name, strings.Join(Names, ", "))
}

// Render lays out a review as text, the title first and then one line
// per field. Runes a terminal would act on instead of print are written
// as Go escapes.
func Render(r app.Review) string {
	var sb strings.Builder
	sb.WriteString(escape(r.Title))
	sb.WriteString("\n")
	for _, f := range r.Fields {
		fmt.Fprintf(&sb, "  %s: %s\n", escape(f.Name), escape(f.Value))
	}
	return sb.String()
}

func escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == ' ' || unicode.IsGraphic(r) {
			sb.WriteRune(r)
			continue
		}
		q := strconv.QuoteRune(r)
		sb.WriteString(q[1 : len(q)-1])
	}
	return sb.String()
}

// StatusMessage is the line shown after the operator answered a review.
func StatusMessage(kind app.ReviewKind, approved bool) string {
	var what string
	switch kind {
	case app.ReviewAddress:
		if approved {
			return "Address verified"
		}
		return "Address verification cancelled"
	case app.ReviewTransaction:
		what = "Transaction"
	case app.ReviewMessage:
		what = "Message"
	default:
		what = "Data"
	}
	if approved {
		return what + " signed"
	}
	return what + " rejected"
}
