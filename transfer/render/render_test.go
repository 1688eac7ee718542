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
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

type adminOnly struct{}

func (adminOnly) Name() string { return "adminOnly" }
func (adminOnly) Check(ctx *authctx.Unprotected, _ authctx.Reason) bool {
	role, ok := authctx.Downcast[string](ctx)
	return ok && role == "admin"
}

func TestRender_RawAndBoxedNodesDisclosedWhenGranted(t *testing.T) {
	ctx := authctx.New("admin", "/profile", "req-1").Unprotected()
	tree := Dict(map[string]Renderable{
		"title": Raw("Profile"),
		"email": Boxed(pcon.New("alice@example.com", adminOnly{})),
	})

	out, err := Render("profile", `{{.title}}: {{.email}}`, tree, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Profile: alice@example.com", out)
}

func TestRender_DeniedLeafAbortsBeforeExecution(t *testing.T) {
	ctx := authctx.New("guest", "/profile", "req-1").Unprotected()
	tree := Dict(map[string]Renderable{
		"email": Boxed(pcon.New("top-secret@example.com", adminOnly{})),
	})

	out, err := Render("profile", `{{.email}}`, tree, ctx)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestSlice_LiftsBoxedItemsIntoArray(t *testing.T) {
	ctx := authctx.New("admin", "/list", "req-1").Unprotected()
	items := []pcon.PCon[string, policy.NoPolicy]{
		pcon.New("a", policy.NoPolicy{}),
		pcon.New("b", policy.NoPolicy{}),
	}
	out, err := Render("list", `{{range .}}{{.}}{{end}}`, Slice(items), ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)
}
