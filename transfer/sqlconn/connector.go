/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package sqlconn is the persistence cross-boundary transfer connector.
// It discharges a PCon's own policy against an authctx.DB reason before
// a value is ever bound into a query (writes), and reconstructs a
// column's policy from the schema registry before handing a read-back
// value to the caller boxed again (reads). Like httpconn, it never sees
// a payload except by calling into pcon's gated exits.
package sqlconn

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" database/sql driver

	"github.com/brownsys/sesame-go/internal/logging"
)

// Driver selects which sqlx-wrapped database/sql driver a Connector binds to.
type Driver string

const (
	DriverPostgres Driver = "pgx"
	DriverSQLite   Driver = "sqlite3"
)

// Connector holds a single pooled database handle and knows how to
// rebind `?`-style placeholders to whatever its underlying driver
// expects, the same driver-switch shape the teacher's database package
// uses for its own postgres/sqlite split.
type Connector struct {
	db     *sqlx.DB
	driver Driver
	logger logging.Logger
}

// NewConnector opens dsn with driver and verifies the connection is
// live, failing fast the same way the teacher's NewConnection does
// rather than deferring the failure to the first query.
func NewConnector(driver Driver, dsn string, logger logging.Logger) (*Connector, error) {
	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlconn: failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlconn: failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("sqlconn: failed to enable foreign keys: %w", err)
		}
	}
	return &Connector{db: db, driver: driver, logger: logger}, nil
}

func (c *Connector) Close() error { return c.db.Close() }

// rebind turns a query written with `?` placeholders into whatever the
// underlying driver expects ($1, $2, ... for postgres; `?` unchanged
// for sqlite).
func (c *Connector) rebind(query string) string { return c.db.Rebind(query) }
