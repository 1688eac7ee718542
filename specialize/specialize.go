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

// Package specialize rebuilds a reflected policy tree back into a
// concrete target shape. The original does this via a Specialize trait
// implemented once per concrete policy type, with the compiler picking
// the right impl at the call site; Go generics have no trait-impl
// resolution; instead, a Builder[P] bundles the (at most four) hooks the
// target shape needs, and the caller composes Builders the same way they
// would compose the policy algebra itself (AndBuilder of two
// LeafBuilders, etc.).
package specialize

import (
	"fmt"

	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/policy"
	"github.com/brownsys/sesame-go/policyreflect"
)

// Builder supplies the hooks needed to rebuild tree shape P out of a
// policyreflect.Tree. A nil hook means "this target doesn't recognize
// trees of that shape"; Specialize falls through to NoPolicy absorption
// before giving up.
type Builder[P policy.Policy] struct {
	Leaf   func(p policy.Policy) (P, bool)
	And    func(l, r policyreflect.Tree) (P, bool)
	Or     func(l, r policyreflect.Tree) (P, bool)
	Option func(inner *policyreflect.Tree) (P, bool)
}

func describe(t policyreflect.Tree) string {
	switch t.Kind {
	case policyreflect.KindLeaf:
		if t.Leaf != nil {
			return fmt.Sprintf("Leaf(%s)", t.Leaf.Name())
		}
		return "Leaf(nil)"
	default:
		return t.Kind.String()
	}
}

// Specialize rebuilds t into P using b's hooks, normalizing t first so
// Any/Test wrappers never need their own hook. When the target shape
// doesn't match directly, Specialize tries the NoPolicy-absorption rule:
// if one side of an And/Or is entirely NoPolicy, the other side alone is
// tried against the full target P, mirroring the original's rule that
// "And(NoPolicy, X)" specializes the same as "X" would on its own.
func Specialize[P policy.Policy](t policyreflect.Tree, b Builder[P]) (P, error) {
	t = t.Normalize()
	var zero P

	switch t.Kind {
	case policyreflect.KindLeaf, policyreflect.KindNoReflection:
		if b.Leaf != nil {
			if p, ok := b.Leaf(t.Leaf); ok {
				return p, nil
			}
		}
		return zero, &errs.SpecializationFailure{Target: fmt.Sprintf("%T", zero), Residual: describe(t)}

	case policyreflect.KindAnd:
		if b.And != nil {
			if p, ok := b.And(*t.Left, *t.Right); ok {
				return p, nil
			}
		}
		if policyreflect.IsNoPolicy(*t.Left) {
			if p, err := Specialize[P](*t.Right, b); err == nil {
				return p, nil
			}
		}
		if policyreflect.IsNoPolicy(*t.Right) {
			if p, err := Specialize[P](*t.Left, b); err == nil {
				return p, nil
			}
		}
		return zero, &errs.SpecializationFailure{Target: fmt.Sprintf("%T", zero), Residual: describe(t)}

	case policyreflect.KindOr:
		if b.Or != nil {
			if p, ok := b.Or(*t.Left, *t.Right); ok {
				return p, nil
			}
		}
		if policyreflect.IsNoPolicy(*t.Left) {
			if p, err := Specialize[P](*t.Right, b); err == nil {
				return p, nil
			}
		}
		if policyreflect.IsNoPolicy(*t.Right) {
			if p, err := Specialize[P](*t.Left, b); err == nil {
				return p, nil
			}
		}
		return zero, &errs.SpecializationFailure{Target: fmt.Sprintf("%T", zero), Residual: describe(t)}

	case policyreflect.KindOption:
		if b.Option != nil {
			if p, ok := b.Option(t.Inner); ok {
				return p, nil
			}
		}
		if t.Inner == nil && b.Leaf != nil {
			// None behaves like NoPolicy for absorption purposes.
			if p, ok := b.Leaf(policy.NoPolicy{}); ok {
				return p, nil
			}
		}
		return zero, &errs.SpecializationFailure{Target: fmt.Sprintf("%T", zero), Residual: describe(t)}

	default:
		return zero, &errs.SpecializationFailure{Target: fmt.Sprintf("%T", zero), Residual: describe(t)}
	}
}

// LeafBuilder builds a Builder for a concrete leaf policy type T: it
// matches a Leaf node whose wrapped policy is exactly T.
func LeafBuilder[T policy.Policy]() Builder[T] {
	return Builder[T]{
		Leaf: func(p policy.Policy) (T, bool) {
			var zero T
			if p == nil {
				return zero, false
			}
			v, ok := p.(T)
			return v, ok
		},
	}
}

// AndBuilder composes two Builders into a Builder for policy.And[P1,P2].
// It tries the left-to-right pairing first, then retries with operands
// swapped, so "P2 && P1" in the source still specializes into
// And[P1,P2] as long as each side matches one sub-builder. When both
// orderings match, the straight (non-swapped) pairing wins.
func AndBuilder[P1, P2 policy.Policy](b1 Builder[P1], b2 Builder[P2]) Builder[policy.And[P1, P2]] {
	return Builder[policy.And[P1, P2]]{
		And: func(l, r policyreflect.Tree) (policy.And[P1, P2], bool) {
			if p1, err := Specialize[P1](l, b1); err == nil {
				if p2, err2 := Specialize[P2](r, b2); err2 == nil {
					return policy.NewAnd(p1, p2), true
				}
			}
			if p1, err := Specialize[P1](r, b1); err == nil {
				if p2, err2 := Specialize[P2](l, b2); err2 == nil {
					return policy.NewAnd(p1, p2), true
				}
			}
			return policy.And[P1, P2]{}, false
		},
	}
}

// OrBuilder is the disjunction counterpart of AndBuilder.
func OrBuilder[P1, P2 policy.Policy](b1 Builder[P1], b2 Builder[P2]) Builder[policy.Or[P1, P2]] {
	return Builder[policy.Or[P1, P2]]{
		Or: func(l, r policyreflect.Tree) (policy.Or[P1, P2], bool) {
			if p1, err := Specialize[P1](l, b1); err == nil {
				if p2, err2 := Specialize[P2](r, b2); err2 == nil {
					return policy.NewOr(p1, p2), true
				}
			}
			if p1, err := Specialize[P1](r, b1); err == nil {
				if p2, err2 := Specialize[P2](l, b2); err2 == nil {
					return policy.NewOr(p1, p2), true
				}
			}
			return policy.Or[P1, P2]{}, false
		},
	}
}

// OptionBuilder composes an inner Builder into a Builder for
// policy.Option[P], matching both a present Some(inner) and an absent
// None node.
func OptionBuilder[P policy.Policy](inner Builder[P]) Builder[policy.Option[P]] {
	return Builder[policy.Option[P]]{
		Option: func(t *policyreflect.Tree) (policy.Option[P], bool) {
			if t == nil {
				return policy.None[P](), true
			}
			p, err := Specialize[P](*t, inner)
			if err != nil {
				return policy.Option[P]{}, false
			}
			return policy.Some(p), true
		},
	}
}

// NoPolicyBuilder is the LeafBuilder specialized for policy.NoPolicy,
// provided as a named constant since it is used constantly to anchor
// And/Or absorption in hand-composed target shapes.
func NoPolicyBuilder() Builder[policy.NoPolicy] { return LeafBuilder[policy.NoPolicy]() }
