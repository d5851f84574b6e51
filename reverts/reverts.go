// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts provides the named error kinds engine operations reject
// with. A revert aborts the whole operation; the runtime rolls every state
// write back, so a rejected call leaves no trace beyond the error itself.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	kind string
}

// New creates a revert sentinel of the given kind. Kinds are compared by
// identity; operations return the package-level sentinels, never fresh values.
func New(kind string) *ErrRevert {
	return &ErrRevert{
		kind: kind,
	}
}

func (e *ErrRevert) Error() string {
	return e.kind
}

// Kind returns the enumerable name of the revert.
func (e *ErrRevert) Kind() string {
	return e.kind
}

// IsRevertErr distinguishes operation rejections from state access failures.
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
