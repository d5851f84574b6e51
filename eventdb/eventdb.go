// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists engine events in sqlite and answers filtered
// queries over them.
package eventdb

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/xenv"
)

const maxTopics = 4

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	blockTime INTEGER NOT NULL,
	address BLOB NOT NULL,
	name TEXT NOT NULL,
	topic0 BLOB,
	topic1 BLOB,
	topic2 BLOB,
	topic3 BLOB,
	data BLOB
);
CREATE INDEX IF NOT EXISTS event_i1 ON event(address, name);
CREATE INDEX IF NOT EXISTS event_i2 ON event(blockTime);`

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Range bounds blockTime, inclusive on both ends.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Criteria matches events by emitter, name and topics. Nil fields match
// anything; topic positions are significant.
type Criteria struct {
	Address *house.Address            `json:"address"`
	Name    string                    `json:"name"`
	Topics  [maxTopics]*house.Bytes32 `json:"topics"`
}

// Filter criteria are OR-ed; everything else narrows the result.
type Filter struct {
	Criteria []*Criteria `json:"criteria"`
	Range    *Range      `json:"range"`
	Options  *Options    `json:"options"`
	Order    OrderType   `json:"order"`
}

// Event is one stored engine event. Signature is derived from the name on
// read, it is not stored.
type Event struct {
	Seq       uint64          `json:"seq"`
	BlockTime uint64          `json:"blockTime"`
	Address   house.Address   `json:"address"`
	Name      string          `json:"name"`
	Signature house.Bytes32   `json:"signature"`
	Topics    []house.Bytes32 `json:"topics"`
	Data      []byte          `json:"data,omitempty"`
}

// EventDB is the sqlite-backed event store.
type EventDB struct {
	path          string
	db            *sql.DB
	stmts         *stmtCache
	driverVersion string
}

// New create or open the event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	stmts, err := newStmtCache(db)
	if err != nil {
		return nil, err
	}
	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmts:         stmts,
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

func (db *EventDB) Path() string {
	return db.path
}

// Close closes the db and its prepared statements.
func (db *EventDB) Close() {
	db.stmts.Clear()
	db.db.Close()
}

// Write appends one call's event batch. The batch shares a single
// statement boundary so partial batches never land.
func (db *EventDB) Write(blockTime uint64, events xenv.Events) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO event(blockTime, address, name, topic0, topic1, topic2, topic3, data) VALUES(?,?,?,?,?,?,?,?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		topics := make([]any, maxTopics)
		for i := range ev.Topics {
			if i >= maxTopics {
				break
			}
			topics[i] = ev.Topics[i].Bytes()
		}
		if _, err := stmt.Exec(
			blockTime, ev.Address.Bytes(), ev.Name,
			topics[0], topics[1], topics[2], topics[3], ev.Data,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter queries stored events. A nil filter returns everything in
// insertion order.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		filter = &Filter{}
	}
	stmt := "SELECT seq, blockTime, address, name, topic0, topic1, topic2, topic3, data FROM event WHERE 1"
	var args []any

	if filter.Range != nil {
		stmt += " AND blockTime >= ?"
		args = append(args, filter.Range.From)
		if filter.Range.To != 0 {
			stmt += " AND blockTime <= ?"
			args = append(args, filter.Range.To)
		}
	}
	if len(filter.Criteria) > 0 {
		stmt += " AND ( 1=0"
		for _, c := range filter.Criteria {
			stmt += " OR ( 1"
			if c.Address != nil {
				stmt += " AND address = ?"
				args = append(args, c.Address.Bytes())
			}
			if c.Name != "" {
				stmt += " AND name = ?"
				args = append(args, c.Name)
			}
			for i, topic := range c.Topics {
				if topic != nil {
					stmt += fmt.Sprintf(" AND topic%v = ?", i)
					args = append(args, topic.Bytes())
				}
			}
			stmt += " )"
		}
		stmt += " )"
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmts.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			event   Event
			address []byte
			topics  [maxTopics][]byte
		)
		if err := rows.Scan(
			&event.Seq,
			&event.BlockTime,
			&address,
			&event.Name,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&event.Data,
		); err != nil {
			return nil, err
		}
		event.Address = house.BytesToAddress(address)
		event.Signature = house.Keccak256([]byte(event.Name))
		for _, topic := range topics {
			if len(topic) > 0 {
				event.Topics = append(event.Topics, house.BytesToBytes32(topic))
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
