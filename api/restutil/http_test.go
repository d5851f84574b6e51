// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no error",
			err:            nil,
			expectedStatus: http.StatusOK,
			expectedBody:   "",
		},
		{
			name:           "bad request",
			err:            BadRequest(errors.New("caller: invalid address")),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "caller: invalid address\n",
		},
		{
			name:           "forbidden",
			err:            Forbidden(errors.New("limit exceeded")),
			expectedStatus: http.StatusForbidden,
			expectedBody:   "limit exceeded\n",
		},
		{
			name:           "status without cause",
			err:            HTTPError(nil, http.StatusNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   "",
		},
		{
			name:           "engine rejection",
			err:            reverts.New("InsufficientStake"),
			expectedStatus: http.StatusConflict,
			expectedBody:   "InsufficientStake\n",
		},
		{
			name:           "wrapped engine rejection",
			err:            errors.WithMessage(reverts.New("BidTooLow"), "place bid"),
			expectedStatus: http.StatusConflict,
			expectedBody:   "place bid: BidTooLow\n",
		},
		{
			name:           "internal error",
			err:            errors.New("sqlite: disk I/O error"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "sqlite: disk I/O error\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WrapHandlerFunc(func(_ http.ResponseWriter, _ *http.Request) error {
				return tc.err
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func TestParseJSONStrict(t *testing.T) {
	var body struct {
		Caller string `json:"caller"`
	}

	require.NoError(t, ParseJSON(strings.NewReader(`{"caller": "0x01"}`), &body))
	assert.Equal(t, "0x01", body.Caller)

	err := ParseJSON(strings.NewReader(`{"caller": "0x01", "extra": 1}`), &body)
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, M{"total": "100"}))

	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total": "100"}`, rec.Body.String())
}
