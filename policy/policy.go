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

// Package policy defines the Policy contract every container is generic
// over, plus the small algebra (And, Or, Option, Ref, NoPolicy) used to
// compose policies without writing a new type for every combination.
package policy

import "github.com/brownsys/sesame-go/authctx"

// Policy is checked once per disclosure site. Name identifies the policy
// for logs and reflection; Check decides whether the payload may cross
// the boundary named by reason.
type Policy interface {
	Name() string
	Check(ctx *authctx.Unprotected, reason authctx.Reason) bool
}

// NoPolicy grants every request unconditionally. It exists so generic
// code has a unit element for And/Or composition and a safe default for
// AnyPolicy.
type NoPolicy struct{}

func (NoPolicy) Name() string { return "NoPolicy" }
func (NoPolicy) Check(*authctx.Unprotected, authctx.Reason) bool { return true }

// AndLike is implemented by every two-operand conjunction policy so that
// policyreflect can walk it without needing to know P1/P2.
type AndLike interface {
	Policy
	Operands() (Policy, Policy)
}

// OrLike is the disjunction counterpart of AndLike.
type OrLike interface {
	Policy
	Operands() (Policy, Policy)
}

// OptionLike is implemented by a policy that wraps zero or one inner
// policy, such as Option[P].
type OptionLike interface {
	Policy
	Inner() (Policy, bool)
}

// RefLike is implemented by a policy that borrows another policy rather
// than owning it, such as Ref[P].
type RefLike interface {
	Policy
	Referent() Policy
}

// And requires both P1 and P2 to grant access. Check short-circuits: P2
// is never evaluated once P1 has refused.
type And[P1, P2 Policy] struct {
	p1 P1
	p2 P2
}

// NewAnd builds a conjunction of two policies.
func NewAnd[P1, P2 Policy](p1 P1, p2 P2) And[P1, P2] { return And[P1, P2]{p1: p1, p2: p2} }

func (a And[P1, P2]) Name() string {
	return "(" + a.p1.Name() + " && " + a.p2.Name() + ")"
}

func (a And[P1, P2]) Check(ctx *authctx.Unprotected, reason authctx.Reason) bool {
	return a.p1.Check(ctx, reason) && a.p2.Check(ctx, reason)
}

func (a And[P1, P2]) Operands() (Policy, Policy) { return a.p1, a.p2 }

// P1Value and P2Value expose the operands at their concrete type, for code that
// already knows the shape and doesn't need to go through reflection.
func (a And[P1, P2]) P1Value() P1 { return a.p1 }
func (a And[P1, P2]) P2Value() P2 { return a.p2 }

// Or grants access if either P1 or P2 does. Check short-circuits on the
// first granting operand.
type Or[P1, P2 Policy] struct {
	p1 P1
	p2 P2
}

func NewOr[P1, P2 Policy](p1 P1, p2 P2) Or[P1, P2] { return Or[P1, P2]{p1: p1, p2: p2} }

func (o Or[P1, P2]) Name() string {
	return "(" + o.p1.Name() + " || " + o.p2.Name() + ")"
}

func (o Or[P1, P2]) Check(ctx *authctx.Unprotected, reason authctx.Reason) bool {
	return o.p1.Check(ctx, reason) || o.p2.Check(ctx, reason)
}

func (o Or[P1, P2]) Operands() (Policy, Policy) { return o.p1, o.p2 }
func (o Or[P1, P2]) P1Value() P1                { return o.p1 }
func (o Or[P1, P2]) P2Value() P2                { return o.p2 }

// Option wraps a policy that may not be present. A None Option grants
// access unconditionally, the same as NoPolicy, because there is nothing
// to check against.
type Option[P Policy] struct {
	some   bool
	policy P
}

func Some[P Policy](p P) Option[P] { return Option[P]{some: true, policy: p} }
func None[P Policy]() Option[P]    { return Option[P]{} }

func (o Option[P]) Name() string {
	if !o.some {
		return "Option(None)"
	}
	return "Option(" + o.policy.Name() + ")"
}

func (o Option[P]) Check(ctx *authctx.Unprotected, reason authctx.Reason) bool {
	if !o.some {
		return true
	}
	return o.policy.Check(ctx, reason)
}

func (o Option[P]) Inner() (Policy, bool) {
	if !o.some {
		return nil, false
	}
	return o.policy, true
}

func (o Option[P]) IsSome() bool  { return o.some }
func (o Option[P]) Value() P      { return o.policy }

// Ref borrows another policy rather than owning it. Because the container
// only ever holds a *P for the lifetime of the borrow, Go's garbage
// collector keeps the referent alive for as long as the Ref does; there is
// no dangling-pointer case to guard against the way the original's
// lifetime parameter does.
type Ref[P Policy] struct {
	policy *P
}

func NewRef[P Policy](p *P) Ref[P] { return Ref[P]{policy: p} }

func (r Ref[P]) Name() string { return "Ref(" + (*r.policy).Name() + ")" }

func (r Ref[P]) Check(ctx *authctx.Unprotected, reason authctx.Reason) bool {
	return (*r.policy).Check(ctx, reason)
}

func (r Ref[P]) Referent() Policy { return *r.policy }
func (r Ref[P]) Value() P         { return *r.policy }
