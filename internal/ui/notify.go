// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package ui

import (
	"github.com/tillitis/tkeyutil"

	"github.com/tillitis/ae-signer/internal/app"
)

// Notifier reports review outcomes as desktop notifications.
type Notifier struct {
	Progname string
	// notify is replaced in tests.
	notify func(progname, msg string)
}

func NewNotifier(progname string) *Notifier {
	return &Notifier{Progname: progname, notify: tkeyutil.Notify}
}

func (n *Notifier) Report(kind app.ReviewKind, approved bool) {
	n.notify(n.Progname, StatusMessage(kind, approved))
}
