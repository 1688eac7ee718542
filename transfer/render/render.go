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

// Package render is the templating cross-boundary transfer connector.
// A Renderable is a tree of plain values, raw-erased values and boxed
// PCons; Render walks the tree once per template execution, discharging
// each boxed leaf's own policy against an authctx.TemplateRender reason
// named after the template being rendered. A single denied leaf aborts
// the whole render before html/template ever sees a disclosed value,
// the same all-or-nothing behavior sqlconn.WriteRow gives multi-column
// writes.
package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

// Renderable is a node in the tree a template is executed against. The
// transform method is unexported so only this package's constructors
// (Raw, Boxed, Dict, Array) can produce one -- callers build a tree out
// of those rather than implementing the interface themselves, mirroring
// how the original restricts BBoxRender::render to its own derive macro
// and a closed set of primitive impls.
type Renderable interface {
	transform(template string, ctx *authctx.Unprotected) (any, error)
}

type rawNode struct{ v any }

func (r rawNode) transform(string, *authctx.Unprotected) (any, error) { return r.v, nil }

// Raw wraps an already-disclosed, non-sensitive value (a primitive, or
// any value the caller has already vetted) so it can sit alongside
// boxed nodes in the same tree.
func Raw(v any) Renderable { return rawNode{v: v} }

type boxedNode[T any, P policy.Policy] struct {
	c pcon.PCon[T, P]
}

func (b boxedNode[T, P]) transform(template string, ctx *authctx.Unprotected) (any, error) {
	v, err := pcon.Discharge(b.c, ctx, authctx.TemplateRender(template))
	if err != nil {
		return nil, &errs.ConnectorError{Connector: "render", Op: "transform", Err: err}
	}
	return v, nil
}

// Boxed wraps a PCon as a leaf whose disclosure is gated by its own
// policy, checked at render time against the template doing the
// disclosing.
func Boxed[T any, P policy.Policy](c pcon.PCon[T, P]) Renderable {
	return boxedNode[T, P]{c: c}
}

type dictNode map[string]Renderable

func (d dictNode) transform(template string, ctx *authctx.Unprotected) (any, error) {
	out := make(map[string]any, len(d))
	for k, child := range d {
		v, err := child.transform(template, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Dict builds a Renderable from a set of named fields, the Go analogue
// of deriving BBoxRender for a struct.
func Dict(fields map[string]Renderable) Renderable { return dictNode(fields) }

type arrayNode []Renderable

func (a arrayNode) transform(template string, ctx *authctx.Unprotected) (any, error) {
	out := make([]any, len(a))
	for i, child := range a {
		v, err := child.transform(template, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Array builds a Renderable from a homogeneous or mixed list of nodes.
func Array(items []Renderable) Renderable { return arrayNode(items) }

// Slice lifts a slice of PCons into an Array of Boxed nodes in one call.
func Slice[T any, P policy.Policy](items []pcon.PCon[T, P]) Renderable {
	nodes := make([]Renderable, len(items))
	for i, c := range items {
		nodes[i] = Boxed(c)
	}
	return Array(nodes)
}

// Render parses tmplText as a named html/template, transforms tree
// against ctx (discharging every boxed leaf along the way), and
// executes the template against the resulting plain-value tree. If any
// leaf's policy denies disclosure, no template execution happens at all
// and the returned error identifies which leaf refused.
func Render(name, tmplText string, tree Renderable, ctx *authctx.Unprotected) (string, error) {
	data, err := tree.transform(name, ctx)
	if err != nil {
		return "", err
	}

	t, err := htmltemplate.New(name).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("render: failed to parse template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: failed to execute template %q: %w", name, err)
	}
	return buf.String(), nil
}
