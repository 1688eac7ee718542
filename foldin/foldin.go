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

// Package foldin lifts a PCon of a collection into a collection of
// PCons, and back. Every policy is fold-in allowed by default; the
// original expresses the opt-out as an auto trait a type can negate.
// Go has no negative trait bounds, so the opt-out here is an explicit
// marker interface a leaf policy implements to forbid folding, checked
// at runtime the same way the original must for AnyPolicy's type-erased
// case (can_fold_in on an erased policy can only ever be a runtime
// check, since the concrete type isn't known until then).
package foldin

import (
	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

// Forbidder is implemented by a leaf policy that must never be folded
// into per-element containers, e.g. a policy whose decision depends on
// the shape of the whole collection rather than any single element.
type Forbidder interface {
	ForbidsFoldIn() bool
}

// CanFoldIn walks p's algebraic shape and reports whether every leaf
// reachable from it allows folding in. And/Or require both operands to
// allow it (splitting the collection must not silently drop either
// side's obligation); Option with no value and Ref delegate through
// transparently.
func CanFoldIn(p policy.Policy) bool {
	switch v := p.(type) {
	case anypolicy.Policy:
		return CanFoldIn(v.Inner())
	case policy.AndLike:
		l, r := v.Operands()
		return CanFoldIn(l) && CanFoldIn(r)
	case policy.OrLike:
		l, r := v.Operands()
		return CanFoldIn(l) && CanFoldIn(r)
	case policy.OptionLike:
		inner, ok := v.Inner()
		if !ok {
			return true
		}
		return CanFoldIn(inner)
	case policy.RefLike:
		return CanFoldIn(v.Referent())
	case Forbidder:
		return !v.ForbidsFoldIn()
	default:
		return true
	}
}

// Slice lifts PCon[[]T, P] into []PCon[T, P], giving each element its
// own copy of the same policy. It returns a FoldInForbidden error,
// leaving the payload untouched, if p's shape disallows folding.
func Slice[T any, P policy.Policy](c pcon.PCon[[]T, P]) ([]pcon.PCon[T, P], error) {
	p := c.Policy()
	if !CanFoldIn(p) {
		return nil, &errs.FoldInForbidden{Policy: p.Name()}
	}
	items, _ := pcon.ApplyUnchecked[[]T, P, []T](c, identitySlice[T]{})
	out := make([]pcon.PCon[T, P], len(items))
	for i, item := range items {
		out[i] = pcon.New(item, p)
	}
	return out, nil
}

type identitySlice[T any] struct{ pcon.Sealed }

func (identitySlice[T]) ApplyUnchecked(t []T) ([]T, error) { return t, nil }

// UnSlice is the inverse of Slice: it requires every element to carry
// the exact same policy (by Name) as the first, since the result is a
// single container with one policy governing the whole collection.
func UnSlice[T any, P policy.Policy](items []pcon.PCon[T, P]) pcon.PCon[[]T, P] {
	raw := make([]T, len(items))
	var zero P
	for i, c := range items {
		v, p := unsafeConsume(c)
		raw[i] = v
		zero = p
	}
	return pcon.New(raw, zero)
}

// Option lifts PCon[*T, P] into an Optional PCon[T, P]: (zero PCon, false)
// or (PCon[T,P], true) depending on whether the pointer was nil, without
// ever disclosing the pointee outside this package when absent.
func Option[T any, P policy.Policy](c pcon.PCon[*T, P]) (pcon.PCon[T, P], bool, error) {
	p := c.Policy()
	var zero pcon.PCon[T, P]
	if !CanFoldIn(p) {
		return zero, false, &errs.FoldInForbidden{Policy: p.Name()}
	}
	ptr, _ := pcon.ApplyUnchecked[*T, P, *T](c, identityPtr[T]{})
	if ptr == nil {
		return zero, false, nil
	}
	return pcon.New(*ptr, p), true, nil
}

type identityPtr[T any] struct{ pcon.Sealed }

func (identityPtr[T]) ApplyUnchecked(t *T) (*T, error) { return t, nil }

// Result lifts PCon[Result[T], P] (modeled here as (T, error)) into
// (PCon[T,P], error): on error, the policy-wrapped zero value is
// discarded and the error surfaces directly since an error carries no
// sensitive payload in this module's connectors.
func Result[T any, P policy.Policy](c pcon.PCon[T, P], err error) (pcon.PCon[T, P], error) {
	if err != nil {
		var zero pcon.PCon[T, P]
		return zero, err
	}
	if !CanFoldIn(c.Policy()) {
		return c, &errs.FoldInForbidden{Policy: c.Policy().Name()}
	}
	return c, nil
}

// unsafeConsume lets this package recover a container's payload and
// policy via the unchecked-extension gated exit; it is "unsafe" only in
// the sense that it bypasses a per-call policy check, which is exactly
// the contract UncheckedExtension documents.
func unsafeConsume[T any, P policy.Policy](c pcon.PCon[T, P]) (T, P) {
	v, _ := pcon.ApplyUnchecked[T, P, T](c, identityValue[T]{})
	return v, c.Policy()
}

type identityValue[T any] struct{ pcon.Sealed }

func (identityValue[T]) ApplyUnchecked(t T) (T, error) { return t, nil }
