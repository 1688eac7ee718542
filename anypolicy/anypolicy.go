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

// Package anypolicy type-erases a concrete Policy behind a single
// non-generic type so containers of heterogeneous policies (a slice, a
// map value, a struct field shared across request types) can exist
// without a per-shape type parameter.
//
// The erased value still tracks which capabilities its concrete policy
// supports (cloning, JSON serialization) as a capability bitmask rather
// than, as the original does, encoding the capability set in the type
// itself. Go generics have no way to express "P implements Policy and
// also happens to implement Clone" as a single type parameter bound that
// varies per call site the way a trait-object bound does, so the
// constructors below check each capability at wrap time and record the
// result; downcasting via Specialize always recovers the exact original
// concrete type regardless of which constructor built the wrapper.
package anypolicy

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/policy"
)

// Capability is a bitmask of what an erased policy's concrete type can
// do beyond the base Policy contract.
type Capability uint8

const (
	CapPlain        Capability = 0
	CapCloneable    Capability = 1 << 0
	CapSerializable Capability = 1 << 1
)

func (c Capability) Has(want Capability) bool { return c&want == want }

// Cloner is implemented by policies that know how to deep-copy
// themselves without the caller knowing the concrete type.
type Cloner interface {
	ClonePolicy() policy.Policy
}

// Policy is the type-erased wrapper. The zero value is not valid; build
// one with New.
type Policy struct {
	inner policy.Policy
	typ   reflect.Type
	caps  Capability
}

// New wraps a concrete policy, auto-detecting which capabilities it
// supports by checking against the Cloner and json.Marshaler interfaces.
func New(p policy.Policy) Policy {
	caps := CapPlain
	if _, ok := p.(Cloner); ok {
		caps |= CapCloneable
	}
	if _, ok := p.(json.Marshaler); ok {
		caps |= CapSerializable
	}
	return Policy{inner: p, typ: reflect.TypeOf(p), caps: caps}
}

// Default returns the erased form of policy.NoPolicy. NoPolicy implements
// neither Cloner nor json.Marshaler, so the result reports CapPlain.
func Default() Policy {
	return New(policy.NoPolicy{})
}

func (a Policy) Name() string {
	return fmt.Sprintf("AnyPolicy(%s)", a.inner.Name())
}

func (a Policy) Check(ctx *authctx.Unprotected, reason authctx.Reason) bool {
	return a.inner.Check(ctx, reason)
}

// Inner exposes the wrapped policy at its erased Policy interface, used
// by policyreflect to walk through an AnyPolicy transparently.
func (a Policy) Inner() policy.Policy { return a.inner }

// Capabilities reports what the wrapped concrete policy supports.
func (a Policy) Capabilities() Capability { return a.caps }

// Is reports whether the erased policy's concrete type is exactly T.
func Is[T policy.Policy](a Policy) bool {
	var zero T
	return a.typ == reflect.TypeOf(zero)
}

// Specialize recovers the original concrete policy, failing with a
// DowncastFailure if the erased value does not hold a T.
func Specialize[T policy.Policy](a Policy) (T, error) {
	var zero T
	if !Is[T](a) {
		return zero, &errs.DowncastFailure{From: a.inner.Name(), To: fmt.Sprintf("%T", zero)}
	}
	return a.inner.(T), nil
}

// SpecializeRef is like Specialize but returns a pointer to a copy of the
// recovered policy, for callers that want to build a policy.Ref without
// an extra allocation at the call site.
func SpecializeRef[T policy.Policy](a Policy) (*T, error) {
	v, err := Specialize[T](a)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Clone deep-copies the erased policy if its concrete type supports it.
// ok is false, and the returned value the zero Policy, when the
// concrete type was wrapped without CapCloneable.
func (a Policy) Clone() (Policy, bool) {
	if !a.caps.Has(CapCloneable) {
		return Policy{}, false
	}
	cloned := a.inner.(Cloner).ClonePolicy()
	return New(cloned), true
}

// MarshalJSON serializes the erased policy if its concrete type supports
// json.Marshaler; otherwise it reports an error rather than silently
// emitting "{}".
func (a Policy) MarshalJSON() ([]byte, error) {
	if !a.caps.Has(CapSerializable) {
		return nil, fmt.Errorf("anypolicy: %s does not implement json.Marshaler", a.inner.Name())
	}
	return json.Marshal(a.inner)
}

// ConvertTo asserts the erased value supports want, returning the same
// Policy unchanged if so. Unlike the original's compile-time trait
// object bound, this is a runtime check: Go cannot narrow Policy's type
// to "erased value known to support want" without the capability
// becoming part of the type again, which is exactly what erasure is
// meant to avoid here.
func (a Policy) ConvertTo(want Capability) (Policy, error) {
	if !a.caps.Has(want) {
		return Policy{}, fmt.Errorf("anypolicy: %s lacks capability %v", a.inner.Name(), want)
	}
	return a, nil
}
