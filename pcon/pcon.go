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

// Package pcon is the privacy-by-construction container at the center of
// this module. A PCon[T, P] pairs a payload of type T with a Policy P
// that must grant every disclosure of T. The only way to see inside a
// PCon is through one of the gated exits this package defines (critical
// region, pure region, extension, unchecked extension); there is no
// exported accessor that hands back T without going through one of them.
//
// consume is unexported on purpose: every gated exit lives in this same
// package precisely so it can call consume, the same way the original
// keeps field access pub(crate) rather than exposing it across crate
// boundaries. A transfer connector in another package never touches T
// directly -- it calls one of the exported gated-exit functions below.
package pcon

import (
	"fmt"

	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/gated/critical"
	"github.com/brownsys/sesame-go/policy"
)

// PCon pairs a payload with the policy that gates its disclosure.
type PCon[T any, P policy.Policy] struct {
	t T
	p P
}

// New wraps t under policy p.
func New[T any, P policy.Policy](t T, p P) PCon[T, P] {
	return PCon[T, P]{t: t, p: p}
}

// consume returns the raw payload and its policy. Every function in this
// file that ultimately discloses T funnels through here so there is a
// single place that ever sees an un-checked T.
func (c PCon[T, P]) consume() (T, P) { return c.t, c.p }

// Policy returns the policy guarding this container without touching the
// payload, for callers that need to reflect or specialize it.
func (c PCon[T, P]) Policy() P { return c.p }

func (c PCon[T, P]) String() string {
	return fmt.Sprintf("PCon<%T>{policy=%s}", c.t, c.p.Name())
}

// AsRef produces a PCon of a pointer to the same payload, without copying
// T, the same role Rust's as_ref plays for BBox. The returned container's
// policy is policy.Ref[P], a borrow of c's own policy rather than a copy
// of it: Check on the Ref defers to *c.p, so a later mutation of c's
// policy (through whatever owns it) is visible through the borrow the
// same way the original's RefPolicy<'_, P> observes the policy it
// borrows instead of snapshotting it.
func AsRef[T any, P policy.Policy](c *PCon[T, P]) PCon[*T, policy.Ref[P]] {
	return PCon[*T, policy.Ref[P]]{t: &c.t, p: policy.NewRef(&c.p)}
}

// Map transforms the payload under the same policy, without disclosing
// it to the caller: lambda runs inside this package, sees T, and must
// produce a new payload of the same sensitivity level. This is the
// un-gated helper every other transform in this package (including the
// pure region, PureRegion) is built on.
func Map[T, R any, P policy.Policy](c PCon[T, P], lambda func(T) R) PCon[R, P] {
	t, p := c.consume()
	return PCon[R, P]{t: lambda(t), p: p}
}

// IntoAnyPolicy erases P, producing a PCon generic only over T.
func IntoAnyPolicy[T any, P policy.Policy](c PCon[T, P]) PCon[T, anypolicy.Policy] {
	t, p := c.consume()
	return PCon[T, anypolicy.Policy]{t: t, p: anypolicy.New(p)}
}

// SpecializePolicy rebuilds an erased container's policy back into a
// concrete shape P2, using the supplied specializer. It fails rather
// than disclosing T if the policy tree doesn't fit P2.
func SpecializePolicy[T any, P2 policy.Policy](c PCon[T, anypolicy.Policy], specialize func(anypolicy.Policy) (P2, error)) (PCon[T, P2], error) {
	t, erased := c.consume()
	p2, err := specialize(erased)
	if err != nil {
		var zero PCon[T, P2]
		return zero, err
	}
	return PCon[T, P2]{t: t, p: p2}, nil
}

// CriticalRegion is the pcr gated exit: the caller presents a signature
// that has been registered out of band (by an auditor or by the
// container's own author at startup, via critical.Register), and region
// is run against the raw payload with no runtime policy check at all.
// This mirrors the original's model, where a critical region is an
// un-policy-checked escape hatch that is only safe because the code
// inside it has been externally reviewed; the only thing this package
// adds beyond that external-review contract is a runtime guard so a
// forgotten or typo'd signature fails loudly instead of silently running
// unreviewed code.
func CriticalRegion[T any, P policy.Policy, R any](c PCon[T, P], sig critical.Signature, region func(T) (R, error)) (R, error) {
	var zero R
	if !critical.Verify(sig) {
		return zero, &errs.PolicyDenied{Policy: c.p.Name(), Reason: "critical region signature not registered"}
	}
	t, _ := c.consume()
	return region(t)
}

// Zip pairs two containers' payloads under the conjunction of their
// policies, for code that needs to combine two boxed values before a
// single pure-region computation.
func Zip[T1, T2 any, P1, P2 policy.Policy](c1 PCon[T1, P1], c2 PCon[T2, P2]) PCon[struct {
	First  T1
	Second T2
}, policy.And[P1, P2]] {
	t1, p1 := c1.consume()
	t2, p2 := c2.consume()
	return PCon[struct {
		First  T1
		Second T2
	}, policy.And[P1, P2]]{
		t: struct {
			First  T1
			Second T2
		}{First: t1, Second: t2},
		p: policy.NewAnd(p1, p2),
	}
}

// PureRegion is the ppr gated exit: lambda must be a pure function of its
// input (no I/O, no side channel that could leak T outside the returned
// value) so that wrapping its result back in the same policy is sound.
// Go cannot enforce purity at compile time any more than the original
// can; both rely on the function satisfying the contract by convention,
// documented here rather than checked.
func PureRegion[T, R any, P policy.Policy](c PCon[T, P], lambda func(T) R) PCon[R, P] {
	return Map(c, lambda)
}

// Discharge is the fundamental checked exit that every transfer
// connector (persistence write, HTTP response, template render, RPC
// send) is ultimately built on: it checks c's own policy against reason
// and discloses T to the caller only if that check grants, mirroring
// Renderable::transform's "if bbox.policy().check(...) { serialize } else
// { error }" shape in the original.
func Discharge[T any, P policy.Policy](c PCon[T, P], ctx *authctx.Unprotected, reason authctx.Reason) (T, error) {
	var zero T
	if !c.p.Check(ctx, reason) {
		return zero, &errs.PolicyDenied{Policy: c.p.Name(), Reason: reason.String()}
	}
	t, _ := c.consume()
	return t, nil
}

// Extension is implemented by a collaborator that receives both the
// payload and its policy once Discharge's check has already granted,
// e.g. a serializer that wants to inspect the policy's name for an
// audit trail alongside the value it serializes.
type Extension[T any, P policy.Policy, R any] interface {
	Apply(t T, p P) (R, error)
}

// Apply checks c's policy against reason exactly like Discharge, then
// hands both the payload and the policy to ext.
func Apply[T any, P policy.Policy, R any](c PCon[T, P], ctx *authctx.Unprotected, reason authctx.Reason, ext Extension[T, P, R]) (R, error) {
	var zero R
	if !c.p.Check(ctx, reason) {
		return zero, &errs.PolicyDenied{Policy: c.p.Name(), Reason: reason.String()}
	}
	t, p := c.consume()
	return ext.Apply(t, p)
}

// Sealed must be embedded by any type implementing UncheckedExtension.
// Its method is unexported and declared in this package, so embedding is
// the only way another package can pick it up -- a type defined entirely
// outside pcon can never satisfy UncheckedExtension on its own, the same
// way an external package can never reach into a struct's unexported
// fields.
type Sealed struct{}

func (Sealed) sealed() {}

// UncheckedExtension is an escape hatch for collaborators that operate
// on T without ever being allowed to actually observe it, e.g. a generic
// "move this value into a container of the same shape" helper. Sealed
// keeps it closed to this module and whoever it deliberately lets
// embed Sealed.
type UncheckedExtension[T any, R any] interface {
	sealed()
	ApplyUnchecked(t T) (R, error)
}

// ApplyUnchecked runs ext against c's payload with no policy check at
// all. It exists for payload-blind collaborators (e.g. "swap this value
// into a different container without looking at it") and must never be
// exposed to a boundary that lets untrusted code choose ext.
func ApplyUnchecked[T any, P policy.Policy, R any](c PCon[T, P], ext UncheckedExtension[T, R]) (R, error) {
	t, _ := c.consume()
	return ext.ApplyUnchecked(t)
}
