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
package sqlconn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
	"github.com/brownsys/sesame-go/schema"
)

// WriteColumn discharges a single boxed value against authctx.DB(query)
// and binds the disclosed value as the first placeholder in query,
// followed by extraArgs. This is the connector's fundamental write
// primitive -- every multi-column write in this package is built on it.
func WriteColumn[T any, P policy.Policy](conn *Connector, ctx *authctx.Unprotected, query string, c pcon.PCon[T, P], extraArgs ...any) error {
	v, err := pcon.Discharge(c, ctx, authctx.DB(query, extraArgs...))
	if err != nil {
		return &errs.ConnectorError{Connector: "sqlconn", Op: "WriteColumn", Err: err}
	}
	args := append([]any{v}, extraArgs...)
	if _, err := conn.db.Exec(conn.rebind(query), args...); err != nil {
		return &errs.ConnectorError{Connector: "sqlconn", Op: "WriteColumn", Err: err}
	}
	return nil
}

// WriteRow discharges every column's own policy against an
// authctx.DB reason naming the target table, then inserts the
// disclosed values as a single row. Columns may each be governed by a
// different policy (erased to anypolicy.Policy so a map can hold them
// uniformly); a single denied column aborts the whole insert before any
// value -- including the ones that were granted -- is bound into the
// query, so a partially-authorized row is never written.
func WriteRow(conn *Connector, ctx *authctx.Unprotected, table string, columns map[string]pcon.PCon[any, anypolicy.Policy]) error {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]any, 0, len(names))
	for _, name := range names {
		reason := authctx.DB(fmt.Sprintf("INSERT INTO %s(%s)", table, name))
		v, err := pcon.Discharge(columns[name], ctx, reason)
		if err != nil {
			return &errs.ConnectorError{Connector: "sqlconn", Op: "WriteRow", Err: err}
		}
		values = append(values, v)
	}

	placeholders := make([]string, len(names))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if _, err := conn.db.Exec(conn.rebind(query), values...); err != nil {
		return &errs.ConnectorError{Connector: "sqlconn", Op: "WriteRow", Err: err}
	}
	return nil
}

// ReadRow runs query (with args bound positionally as `?`) expecting at
// most one row, and rebuilds each returned column into a PCon whose
// policy comes from schema.Lookup(table, column) applied to the full
// row -- the same row-dependent policy reconstruction the original's
// persistence read path performs, generalized here via the process-wide
// schema registry instead of compile-time derive. Returns false if the
// query produced no row.
func ReadRow(conn *Connector, table, query string, args ...any) (map[string]pcon.PCon[any, anypolicy.Policy], bool, error) {
	rows, err := conn.db.Queryx(conn.rebind(query), args...)
	if err != nil {
		return nil, false, &errs.ConnectorError{Connector: "sqlconn", Op: "ReadRow", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, nil
	}
	raw := make(map[string]any)
	if err := rows.MapScan(raw); err != nil {
		return nil, false, &errs.ConnectorError{Connector: "sqlconn", Op: "ReadRow", Err: err}
	}

	boxed := make(map[string]pcon.PCon[any, anypolicy.Policy], len(raw))
	for column, value := range raw {
		fn := schema.Lookup(table, column)
		boxed[column] = pcon.New[any](value, anypolicy.New(fn(raw)))
	}
	return boxed, true, nil
}
