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

// Package schema is the process-global registry mapping a table/column
// pair to the policy constructor a persistence read must apply when
// rebuilding a PCon from a database row. Read connectors have no other
// way to learn which policy governs a column: the row itself carries no
// type information, so whoever owns the schema must register it before
// the first read.
package schema

import (
	"sync"

	"github.com/brownsys/sesame-go/policy"
)

// RowPolicyFunc builds the policy that should govern a value read back
// out of the named table/column, given the full row so policies that
// depend on sibling columns (e.g. a tenant id) can be constructed.
type RowPolicyFunc func(row map[string]any) policy.Policy

type key struct {
	table, column string
}

type registry struct {
	mu    sync.RWMutex
	byKey map[key]RowPolicyFunc
}

var (
	instance *registry
	once     sync.Once
)

func getInstance() *registry {
	once.Do(func() {
		instance = &registry{byKey: make(map[key]RowPolicyFunc)}
	})
	return instance
}

// Register associates table.column with the policy constructor fn.
// Registering the same table.column twice overwrites the previous
// constructor, which is intentional: schema migrations redefine column
// policies in place rather than accumulating stale ones.
func Register(table, column string, fn RowPolicyFunc) {
	r := getInstance()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[key{table, column}] = fn
}

// Lookup returns the registered policy constructor for table.column. An
// unregistered table.column defaults to policy.NoPolicy{} rather than an
// error -- a column no one has claimed a policy over is, by default,
// unrestricted, not unreadable.
func Lookup(table, column string) RowPolicyFunc {
	r := getInstance()
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.byKey[key{table, column}]
	if !ok {
		return func(map[string]any) policy.Policy { return policy.NoPolicy{} }
	}
	return fn
}

// Reset clears every registered entry. Exposed for tests only, since the
// registry is otherwise process-global and accumulates for the life of
// the binary.
func Reset() {
	r := getInstance()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey = make(map[key]RowPolicyFunc)
}
