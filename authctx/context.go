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

// Package authctx carries the request-scoped application data that a
// Policy.Check call is judged against. Context[D] is the typed view a
// handler works with; Unprotected is the erased view a Policy
// implementation actually receives, so that policies never need to be
// generic over every app's data shape.
package authctx

import "fmt"

// TrustLevel marks how much a Context's data can be trusted by a Policy.
// Production contexts come from a real request; Degraded contexts come
// from tests or bootstrap code and should never satisfy a policy that
// asserts anything about a real caller.
type TrustLevel int

const (
	TrustProduction TrustLevel = iota
	TrustDegraded
)

func (t TrustLevel) String() string {
	if t == TrustProduction {
		return "production"
	}
	return "degraded"
}

// Unprotected is the type-erased view of a Context that Policy.Check
// receives. Policies downcast Data() back to the concrete type they
// expect; a mismatched downcast is a programming error, not a policy
// decision, so Downcast reports failure rather than panicking.
type Unprotected struct {
	data      any
	route     string
	requestID string
	trust     TrustLevel
}

func (u *Unprotected) Data() any           { return u.data }
func (u *Unprotected) Route() string       { return u.route }
func (u *Unprotected) RequestID() string   { return u.requestID }
func (u *Unprotected) Trust() TrustLevel   { return u.trust }
func (u *Unprotected) IsDegraded() bool    { return u.trust == TrustDegraded }

// Downcast recovers the concrete app data type D from an erased context.
// ok is false if the context was built around a different type.
func Downcast[D any](u *Unprotected) (D, bool) {
	d, ok := u.data.(D)
	return d, ok
}

// Context is the typed, request-scoped handle a connector or handler
// threads through a call. It is deliberately not itself a Policy input:
// code must call Unprotected() to cross into policy-checking territory,
// making the erasure point visible at every call site.
type Context[D any] struct {
	data      D
	route     string
	requestID string
	trust     TrustLevel
}

// New builds a production Context carrying data for the named route.
func New[D any](data D, route string, requestID string) Context[D] {
	return Context[D]{data: data, route: route, requestID: requestID, trust: TrustProduction}
}

// Empty returns a degraded Context with no app data, for bootstrap code
// that runs before any request has been received.
func Empty() Context[struct{}] {
	return Context[struct{}]{trust: TrustDegraded}
}

// Test builds a degraded Context for use in unit tests. Degraded contexts
// are never able to satisfy a policy that checks Trust().
func Test[D any](data D) Context[D] {
	return Context[D]{data: data, route: "test", requestID: "test", trust: TrustDegraded}
}

func (c Context[D]) Data() D         { return c.data }
func (c Context[D]) Route() string   { return c.route }
func (c Context[D]) RequestID() string { return c.requestID }
func (c Context[D]) Trust() TrustLevel { return c.trust }

// Unprotected erases the concrete data type, producing the view that
// Policy.Check is allowed to see.
func (c Context[D]) Unprotected() *Unprotected {
	return &Unprotected{data: c.data, route: c.route, requestID: c.requestID, trust: c.trust}
}

func (c Context[D]) String() string {
	return fmt.Sprintf("Context{route=%s, request=%s, trust=%s}", c.route, c.requestID, c.trust)
}

// ReasonKind tags why a policy is being consulted, mirroring the small set
// of disclosure sites the container's gated exits and connectors expose.
type ReasonKind int

const (
	ReasonTemplateRender ReasonKind = iota
	ReasonDB
	ReasonCookie
	ReasonResponse
	ReasonRedirect
	ReasonCustom
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonTemplateRender:
		return "TemplateRender"
	case ReasonDB:
		return "DB"
	case ReasonCookie:
		return "Cookie"
	case ReasonResponse:
		return "Response"
	case ReasonRedirect:
		return "Redirect"
	default:
		return "Custom"
	}
}

// Reason is passed to every Policy.Check call so a policy can make
// different decisions depending on where the payload is about to escape
// to. It is an open struct rather than an interface so Check stays
// allocation-free in the common case.
type Reason struct {
	Kind     ReasonKind
	Name     string // template name, cookie name, etc.
	SQL      string
	Params   []any
	Redirect string
	Custom   any
}

func TemplateRender(name string) Reason { return Reason{Kind: ReasonTemplateRender, Name: name} }
func DB(sql string, params ...any) Reason {
	return Reason{Kind: ReasonDB, SQL: sql, Params: params}
}
func Cookie(name string) Reason            { return Reason{Kind: ReasonCookie, Name: name} }
func Response() Reason                     { return Reason{Kind: ReasonResponse} }
func Redirect(url string) Reason           { return Reason{Kind: ReasonRedirect, Redirect: url} }
func CustomReason(v any) Reason            { return Reason{Kind: ReasonCustom, Custom: v} }

func (r Reason) String() string {
	switch r.Kind {
	case ReasonTemplateRender:
		return fmt.Sprintf("TemplateRender(%s)", r.Name)
	case ReasonDB:
		return fmt.Sprintf("DB(%s)", r.SQL)
	case ReasonCookie:
		return fmt.Sprintf("Cookie(%s)", r.Name)
	case ReasonRedirect:
		return fmt.Sprintf("Redirect(%s)", r.Redirect)
	default:
		return r.Kind.String()
	}
}
