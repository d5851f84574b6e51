// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("BidTooLow")
	assert.Equal(t, "BidTooLow", revert.Kind())
	assert.Equal(t, revert.Error(), revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertsWrapped(t *testing.T) {
	sentinel := New("InvalidAmount")
	wrapped := errors.Wrap(sentinel, "stake")

	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, New("InvalidAmount")), "kinds compare by identity")
}
