// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/stakehouse/stakehouse/log"
)

// requestLoggerHandler logs each request with its body. The body can only
// be read once, so it is restored for the wrapped handler.
func requestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bodyBytes []byte
		if r.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		started := time.Now()
		handler.ServeHTTP(w, r)

		logger.Info("API request",
			"timestamp", started.Unix(),
			"method", r.Method,
			"uri", r.URL.String(),
			"body", string(bodyBytes),
		)
	})
}
