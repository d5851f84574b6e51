// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events answers filtered queries over the persisted event log.
package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Range != nil && filter.Range.To != 0 && filter.Range.From > filter.Range.To {
		return restutil.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	for i, criterion := range filter.Criteria {
		if criterion == nil {
			return restutil.BadRequest(fmt.Errorf("criteria[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// default limit +1 to detect when pagination is needed
		filter.Options = &eventdb.Options{Limit: e.limit + 1}
	}

	found, err := e.db.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if len(found) > int(e.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return restutil.WriteJSON(w, found)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
