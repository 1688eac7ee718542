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

// Package policyreflect mirrors a policy's algebraic shape into an
// inspectable tree. The original expresses this as a recursive enum with
// one variant per combinator plus trait-dispatch methods on each variant;
// Go generics can't carry that dispatch across an arbitrary, caller-
// defined tree of type parameters, so Tree is a plain tagged union built
// by type-switching on the small set of "-Like" marker interfaces that
// policy/anypolicy/testpolicy already implement. Adding a new combinator
// means adding one case here, the same cost as adding a new enum variant
// would have been.
package policyreflect

import (
	"fmt"

	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/policy"
	"github.com/brownsys/sesame-go/testpolicy"
)

// Kind tags which algebraic shape a Tree node mirrors.
type Kind int

const (
	KindNoReflection Kind = iota
	KindLeaf
	KindAnd
	KindOr
	KindOption
	KindAny
	KindTest
)

func (k Kind) String() string {
	switch k {
	case KindNoReflection:
		return "NoReflection"
	case KindLeaf:
		return "Leaf"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindOption:
		return "Option"
	case KindAny:
		return "Any"
	case KindTest:
		return "Test"
	default:
		return "Unknown"
	}
}

// Tree is the reflected, owned mirror of a policy value. Leaf holds the
// original opaque policy.Policy for KindLeaf nodes; Left/Right hold the
// two operands of an And/Or node; Inner holds the wrapped subtree of an
// Option (nil means None), Any, or Test node.
type Tree struct {
	Kind  Kind
	Leaf  policy.Policy
	Left  *Tree
	Right *Tree
	Inner *Tree
}

func box(t Tree) *Tree { return &t }

// Reflect walks a concrete policy value and returns its algebraic shape.
// Any concrete type that doesn't implement one of the known "-Like"
// interfaces is treated as an opaque leaf, matching the original's
// default NoReflection/Leaf behavior for policies that don't participate
// in the reflection machinery.
func Reflect(p policy.Policy) Tree {
	switch v := p.(type) {
	case anypolicy.Policy:
		return Tree{Kind: KindAny, Inner: box(Reflect(v.Inner()))}
	case interface {
		policy.Policy
		Inner() policy.Policy
	}:
		// testpolicy.Policy[P] satisfies this shape without this package
		// needing to import the concrete generic type directly.
		return Tree{Kind: KindTest, Inner: box(Reflect(v.Inner()))}
	case policy.AndLike:
		l, r := v.Operands()
		return Tree{Kind: KindAnd, Left: box(Reflect(l)), Right: box(Reflect(r))}
	case policy.OrLike:
		l, r := v.Operands()
		return Tree{Kind: KindOr, Left: box(Reflect(l)), Right: box(Reflect(r))}
	case policy.OptionLike:
		inner, ok := v.Inner()
		if !ok {
			return Tree{Kind: KindOption}
		}
		t := Reflect(inner)
		return Tree{Kind: KindOption, Inner: &t}
	case policy.RefLike:
		// A Ref delegates transparently to its referent; the original's
		// reflection enum has no distinct "Ref" variant either, since a
		// borrow carries no algebraic shape of its own.
		return Reflect(v.Referent())
	default:
		return Tree{Kind: KindLeaf, Leaf: p}
	}
}

// IsNoPolicy reports whether every leaf reachable in t is policy.NoPolicy
// (or an Option/And/Or built entirely out of NoPolicy, or an absent
// Option). It requires t to already be normalized: an Any or Test node
// causes a panic, since those wrappers must be peeled first by Normalize.
func IsNoPolicy(t Tree) bool {
	switch t.Kind {
	case KindNoReflection:
		return false
	case KindLeaf:
		_, ok := t.Leaf.(policy.NoPolicy)
		return ok
	case KindAnd:
		return IsNoPolicy(*t.Left) && IsNoPolicy(*t.Right)
	case KindOr:
		return IsNoPolicy(*t.Left) || IsNoPolicy(*t.Right)
	case KindOption:
		if t.Inner == nil {
			return true
		}
		return IsNoPolicy(*t.Inner)
	case KindAny, KindTest:
		panic(fmt.Sprintf("policyreflect: IsNoPolicy called on un-normalized %s node", t.Kind))
	default:
		return false
	}
}

// Normalize strips every Any and Test wrapper from t, recursively,
// leaving only the bare algebraic shape underneath. Most tree consumers
// (IsNoPolicy, specialize.Specialize) expect a normalized tree so they
// don't need an Any/Test case of their own.
func (t Tree) Normalize() Tree {
	switch t.Kind {
	case KindAny, KindTest:
		return t.Inner.Normalize()
	case KindAnd, KindOr:
		l := t.Left.Normalize()
		r := t.Right.Normalize()
		return Tree{Kind: t.Kind, Left: &l, Right: &r}
	case KindOption:
		if t.Inner == nil {
			return t
		}
		i := t.Inner.Normalize()
		return Tree{Kind: KindOption, Inner: &i}
	default:
		return t
	}
}

// children returns t's immediate subtrees in traversal order, used by
// both visitor disciplines below.
func (t Tree) children() []Tree {
	switch t.Kind {
	case KindAnd, KindOr:
		return []Tree{*t.Left, *t.Right}
	case KindOption, KindAny, KindTest:
		if t.Inner == nil {
			return nil
		}
		return []Tree{*t.Inner}
	default:
		return nil
	}
}

// PrefixVisitor is invoked on a node before its children. It returns the
// children to descend into (normally t.children(), but a visitor may
// prune or reorder them) along with the state to thread into each.
type PrefixVisitor[S any] interface {
	Visit(t Tree, state S) (children []Tree, next S)
}

// WalkPrefix drives a PrefixVisitor top-down, threading state from
// parent to children.
func WalkPrefix[S any](t Tree, v PrefixVisitor[S], state S) {
	children, next := v.Visit(t, state)
	for _, c := range children {
		WalkPrefix(c, v, next)
	}
}

// PostfixVisitor is invoked on a node after all of its children have
// already been visited and folded into a result.
type PostfixVisitor[R any] interface {
	Visit(t Tree, childResults []R) R
}

// WalkPostfix drives a PostfixVisitor bottom-up, collecting each child's
// result before folding the parent.
func WalkPostfix[R any](t Tree, v PostfixVisitor[R]) R {
	children := t.children()
	results := make([]R, len(children))
	for i, c := range children {
		results[i] = WalkPostfix(c, v)
	}
	return v.Visit(t, results)
}
