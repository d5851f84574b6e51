// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakehouse/stakehouse/house"
)

func TestEventSignature(t *testing.T) {
	ev := &Event{Name: "Staked"}
	assert.Equal(t, house.Keccak256([]byte("Staked")), ev.Signature())
	assert.NotEqual(t, ev.Signature(), (&Event{Name: "Unstaked"}).Signature())
}
