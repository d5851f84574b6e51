// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
)

func TestFormatSlogValue(t *testing.T) {
	tests := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("foo"), "foo"},
		{slog.Int64Value(-42), "-42"},
		{slog.Uint64Value(42), "42"},
		{slog.BoolValue(true), "true"},
		{slog.AnyValue(big.NewInt(1e9)), "1000000000"},
		{slog.AnyValue((*big.Int)(nil)), "<nil>"},
		{slog.AnyValue(uint256.NewInt(100)), "100"},
		{slog.AnyValue((*uint256.Int)(nil)), "<nil>"},
	}
	for _, tt := range tests {
		if got := FormatSlogValue(tt.value, nil); got != tt.want {
			t.Errorf("FormatSlogValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTerminalHandlerFormat(t *testing.T) {
	var sb strings.Builder
	logger := NewLogger(NewTerminalHandler(&sb, false))
	logger.Info("a message", "key", "value", "amount", big.NewInt(7))

	out := sb.String()
	for _, want := range []string{"INFO", "a message", "key=value", "amount=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"has space", `"has space"`},
		{"has=equals", `"has=equals"`},
		{"new\nline", `"new\nline"`},
	}
	for _, tt := range tests {
		if got := string(appendEscapeString(nil, tt.in)); got != tt.want {
			t.Errorf("appendEscapeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
