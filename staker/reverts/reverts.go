// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert. Every revert aborts the operation that raised it.
type Kind uint8

const (
	KindDomain        Kind = iota // precondition not met, retryable once it holds
	KindAccountState              // record missing, duplicated, mis-derived or of the wrong type
	KindAuthorization             // missing signer, wrong or unset authority
	KindArithmetic                // checked math overflow or underflow
)

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindAccountState:
		return "account-state"
	case KindAuthorization:
		return "authorization"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "unknown"
	}
}

type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a domain revert.
func New(message string) *ErrRevert {
	return &ErrRevert{
		kind:    KindDomain,
		message: message,
	}
}

// NewWithKind creates a revert of the given kind.
func NewWithKind(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return 0, false
	}
	return ve.kind, true
}

// IsRetryable reports whether err may succeed on a later attempt, which only holds for domain reverts.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindDomain
}
