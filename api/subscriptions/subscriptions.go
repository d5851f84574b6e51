// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams engine events to websocket clients as they
// are committed.
package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	txQueueLen     = 32
	pingPeriod     = 10 * time.Second
	writeWait      = 5 * time.Second
	maxMessageSize = 512
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// EventMessage is one streamed event.
type EventMessage struct {
	BlockTime uint64          `json:"blockTime"`
	Address   house.Address   `json:"address"`
	Name      string          `json:"name"`
	Signature house.Bytes32   `json:"signature"`
	Topics    []house.Bytes32 `json:"topics"`
	Data      []byte          `json:"data,omitempty"`
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	var addrFilter *house.Address
	if q := req.URL.Query().Get("address"); q != "" {
		addr, err := house.ParseAddress(q)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		addrFilter = addr
	}
	nameFilter := req.URL.Query().Get("name")

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// upgrader has already responded
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	eventCh := make(chan xenv.Events, txQueueLen)
	sub := s.rt.SubscribeEvents(eventCh)
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go func() {
		// drain the read side to catch client close
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-req.Context().Done():
			return nil
		case err := <-sub.Err():
			return err
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case batch := <-eventCh:
			now := s.rt.Now()
			for _, ev := range batch {
				if addrFilter != nil && ev.Address != *addrFilter {
					continue
				}
				if nameFilter != "" && ev.Name != nameFilter {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(&EventMessage{
					BlockTime: now,
					Address:   ev.Address,
					Name:      ev.Name,
					Signature: ev.Signature(),
					Topics:    ev.Topics,
					Data:      ev.Data,
				}); err != nil {
					logger.Debug("failed to write event message", "err", err)
					return nil
				}
			}
		}
	}
}

// Close terminates all live subscriptions and waits for their handlers.
func (s *Subscriptions) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("GET /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
