// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"database/sql"

	lru "github.com/hashicorp/golang-lru"
)

const stmtCacheSize = 64

// stmtCache caches prepared statements keyed by query text. Filter queries
// are built dynamically, so the set of distinct texts is bounded by eviction
// rather than by construction.
type stmtCache struct {
	db    *sql.DB
	cache *lru.Cache
}

func newStmtCache(db *sql.DB) (*stmtCache, error) {
	cache, err := lru.NewWithEvict(stmtCacheSize, func(_, value any) {
		_ = value.(*sql.Stmt).Close()
	})
	if err != nil {
		return nil, err
	}
	return &stmtCache{db: db, cache: cache}, nil
}

func (sc *stmtCache) Prepare(query string) (*sql.Stmt, error) {
	if cached, ok := sc.cache.Get(query); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := sc.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	sc.cache.Add(query, stmt)
	return stmt, nil
}

func (sc *stmtCache) Clear() {
	sc.cache.Purge()
}
