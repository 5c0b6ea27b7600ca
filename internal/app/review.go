// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

package app

type ReviewKind int

const (
	ReviewAddress ReviewKind = iota
	ReviewTransaction
	ReviewMessage
	ReviewData
)

func (k ReviewKind) String() string {
	switch k {
	case ReviewAddress:
		return "address"
	case ReviewTransaction:
		return "transaction"
	case ReviewMessage:
		return "message"
	case ReviewData:
		return "data"
	}
	return "unknown"
}

// Field is one named value shown to the operator.
type Field struct {
	Name  string
	Value string
}

// Review is what the operator is asked to approve.
type Review struct {
	Kind   ReviewKind
	Title  string
	Fields []Field
	// Verb names the approving action, for example "Sign transaction".
	Verb string
}

// Approver shows a review to the operator and blocks until they approve
// or reject it. An error means the review could not be shown.
type Approver interface {
	Review(r Review) (bool, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(r Review) (bool, error)

func (f ApproverFunc) Review(r Review) (bool, error) {
	return f(r)
}

// StatusReporter is told the outcome of every operation the operator
// was asked about.
type StatusReporter interface {
	Report(kind ReviewKind, approved bool)
}
