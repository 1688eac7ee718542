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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/internal/logging"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
	"github.com/brownsys/sesame-go/schema"
)

type ownerOnly struct{ owner string }

func (p ownerOnly) Name() string { return "ownerOnly(" + p.owner + ")" }
func (p ownerOnly) Check(ctx *authctx.Unprotected, _ authctx.Reason) bool {
	caller, ok := authctx.Downcast[string](ctx)
	return ok && caller == p.owner
}

func newTestConnector(t *testing.T) *Connector {
	t.Helper()
	conn, err := NewConnector(DriverSQLite, ":memory:", logging.NewNop())
	require.NoError(t, err)
	_, err = conn.db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, owner TEXT, body TEXT)`)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWriteRow_InsertsWhenEveryColumnGrants(t *testing.T) {
	conn := newTestConnector(t)
	ctx := authctx.New("alice", "/notes", "req-1").Unprotected()

	columns := map[string]pcon.PCon[any, anypolicy.Policy]{
		"id":    pcon.New[any](1, anypolicy.New(ownerOnly{owner: "alice"})),
		"owner": pcon.New[any]("alice", anypolicy.New(ownerOnly{owner: "alice"})),
		"body":  pcon.New[any]("hello", anypolicy.New(ownerOnly{owner: "alice"})),
	}
	err := WriteRow(conn, ctx, "notes", columns)
	assert.NoError(t, err)

	var count int
	require.NoError(t, conn.db.Get(&count, "SELECT COUNT(*) FROM notes WHERE owner = ?", "alice"))
	assert.Equal(t, 1, count)
}

func TestWriteRow_DeniesWithoutWritingAnyColumn(t *testing.T) {
	conn := newTestConnector(t)
	ctx := authctx.New("mallory", "/notes", "req-1").Unprotected()

	columns := map[string]pcon.PCon[any, anypolicy.Policy]{
		"id":    pcon.New[any](1, anypolicy.New(ownerOnly{owner: "alice"})),
		"owner": pcon.New[any]("alice", anypolicy.New(ownerOnly{owner: "alice"})),
		"body":  pcon.New[any]("hello", anypolicy.New(ownerOnly{owner: "alice"})),
	}
	err := WriteRow(conn, ctx, "notes", columns)
	assert.Error(t, err)

	var count int
	require.NoError(t, conn.db.Get(&count, "SELECT COUNT(*) FROM notes"))
	assert.Equal(t, 0, count)
}

func TestReadRow_RebuildsPolicyFromSchemaRegistry(t *testing.T) {
	conn := newTestConnector(t)
	writerCtx := authctx.New("alice", "/notes", "req-1").Unprotected()
	columns := map[string]pcon.PCon[any, anypolicy.Policy]{
		"id":    pcon.New[any](1, anypolicy.New(policy.NoPolicy{})),
		"owner": pcon.New[any]("alice", anypolicy.New(policy.NoPolicy{})),
		"body":  pcon.New[any]("hello", anypolicy.New(policy.NoPolicy{})),
	}
	require.NoError(t, WriteRow(conn, writerCtx, "notes", columns))

	schema.Reset()
	t.Cleanup(schema.Reset)
	schema.Register("notes", "body", func(row map[string]any) policy.Policy {
		return ownerOnly{owner: row["owner"].(string)}
	})

	row, found, err := ReadRow(conn, "notes", "SELECT * FROM notes WHERE id = ?", 1)
	require.NoError(t, err)
	require.True(t, found)

	body := row["body"]
	assert.True(t, anypolicy.Is[ownerOnly](body.Policy()))

	_, err = pcon.SpecializePolicy[any, ownerOnly](body, func(a anypolicy.Policy) (ownerOnly, error) {
		return anypolicy.Specialize[ownerOnly](a)
	})
	require.NoError(t, err)
}

func TestWriteColumn_DeniedDoesNotExecute(t *testing.T) {
	conn := newTestConnector(t)
	_, err := conn.db.Exec(`INSERT INTO notes (id, owner, body) VALUES (1, 'alice', 'seed')`)
	require.NoError(t, err)

	ctx := authctx.New("mallory", "/notes", "req-1").Unprotected()
	boxed := pcon.New("overwritten", ownerOnly{owner: "alice"})
	err = WriteColumn(conn, ctx, "UPDATE notes SET body = ? WHERE id = 1", boxed)
	assert.Error(t, err)

	var body string
	require.NoError(t, conn.db.Get(&body, "SELECT body FROM notes WHERE id = 1"))
	assert.Equal(t, "seed", body)
}

func TestReadRow_UnregisteredColumnDefaultsToNoPolicy(t *testing.T) {
	conn := newTestConnector(t)
	writerCtx := authctx.New("alice", "/notes", "req-1").Unprotected()
	columns := map[string]pcon.PCon[any, anypolicy.Policy]{
		"id":    pcon.New[any](1, anypolicy.New(policy.NoPolicy{})),
		"owner": pcon.New[any]("alice", anypolicy.New(policy.NoPolicy{})),
		"body":  pcon.New[any]("hello", anypolicy.New(policy.NoPolicy{})),
	}
	require.NoError(t, WriteRow(conn, writerCtx, "notes", columns))

	schema.Reset()
	t.Cleanup(schema.Reset)

	row, found, err := ReadRow(conn, "notes", "SELECT * FROM notes WHERE id = ?", 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, anypolicy.Is[policy.NoPolicy](row["body"].Policy()))
}

func TestReadRow_NoMatchingRowReturnsFalse(t *testing.T) {
	conn := newTestConnector(t)
	_, found, err := ReadRow(conn, "notes", "SELECT * FROM notes WHERE id = ?", 999)
	require.NoError(t, err)
	assert.False(t, found)
}
