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
package specialize

import (
	"testing"

	"github.com/brownsys/sesame-go/anypolicy"
	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/policy"
	"github.com/brownsys/sesame-go/policyreflect"
	"github.com/stretchr/testify/assert"
)

// unjoinablePolicy stands in for a leaf policy with no generic join
// implementation, the case the original leaves as todo!().
type unjoinablePolicy struct{ v int }

func (p unjoinablePolicy) Name() string                                     { return "unjoinablePolicy" }
func (p unjoinablePolicy) Check(*authctx.Unprotected, authctx.Reason) bool { return true }

func TestSpecialize_Leaf(t *testing.T) {
	tree := policyreflect.Reflect(unjoinablePolicy{v: 9})
	p, err := Specialize[unjoinablePolicy](tree, LeafBuilder[unjoinablePolicy]())
	assert.NoError(t, err)
	assert.Equal(t, 9, p.v)
}

func TestSpecialize_LeafWrongType(t *testing.T) {
	tree := policyreflect.Reflect(policy.NoPolicy{})
	_, err := Specialize[unjoinablePolicy](tree, LeafBuilder[unjoinablePolicy]())
	assert.Error(t, err)
}

func TestSpecialize_And(t *testing.T) {
	src := policy.NewAnd(unjoinablePolicy{1}, unjoinablePolicy{2})
	tree := policyreflect.Reflect(src)

	target := AndBuilder(LeafBuilder[unjoinablePolicy](), LeafBuilder[unjoinablePolicy]())
	p, err := Specialize[policy.And[unjoinablePolicy, unjoinablePolicy]](tree, target)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.P1Value().v)
	assert.Equal(t, 2, p.P2Value().v)
}

// TestSpecialize_NestedAndWithNoPolicyAbsorption mirrors the scenario
// where AnyPolicy(And(NoPolicy, And(NoPolicy, UnjoinableP{v:20}))) must
// specialize back down to a bare UnjoinableP retaining v=20: each
// NoPolicy side is absorbed until the single surviving leaf remains.
func TestSpecialize_NestedAndWithNoPolicyAbsorption(t *testing.T) {
	src := anypolicy.New(policy.NewAnd(policy.NoPolicy{},
		policy.NewAnd(policy.NoPolicy{}, unjoinablePolicy{v: 20})))
	tree := policyreflect.Reflect(src)

	p, err := Specialize[unjoinablePolicy](tree, LeafBuilder[unjoinablePolicy]())
	assert.NoError(t, err)
	assert.Equal(t, 20, p.v)
}

func TestSpecialize_AndBuilderTriesCommutativeOrder(t *testing.T) {
	// Source has the leaves swapped relative to the target's declared
	// (P1, P2) type order; the commutative retry inside AndBuilder must
	// still find a fit.
	src := policy.NewAnd(unjoinablePolicy{1}, policy.NoPolicy{})
	tree := policyreflect.Reflect(src)

	target := AndBuilder(NoPolicyBuilder(), LeafBuilder[unjoinablePolicy]())
	p, err := Specialize[policy.And[policy.NoPolicy, unjoinablePolicy]](tree, target)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.P2Value().v)
}

func TestSpecialize_Or(t *testing.T) {
	src := policy.NewOr(unjoinablePolicy{1}, unjoinablePolicy{2})
	tree := policyreflect.Reflect(src)

	target := OrBuilder(LeafBuilder[unjoinablePolicy](), LeafBuilder[unjoinablePolicy]())
	p, err := Specialize[policy.Or[unjoinablePolicy, unjoinablePolicy]](tree, target)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.P1Value().v)
	assert.Equal(t, 2, p.P2Value().v)
}

func TestSpecialize_OptionSomeAndNone(t *testing.T) {
	target := OptionBuilder(LeafBuilder[unjoinablePolicy]())

	some := policyreflect.Reflect(policy.Some(unjoinablePolicy{v: 3}))
	p, err := Specialize[policy.Option[unjoinablePolicy]](some, target)
	assert.NoError(t, err)
	assert.True(t, p.IsSome())
	assert.Equal(t, 3, p.Value().v)

	none := policyreflect.Reflect(policy.None[unjoinablePolicy]())
	p, err = Specialize[policy.Option[unjoinablePolicy]](none, target)
	assert.NoError(t, err)
	assert.False(t, p.IsSome())
}

func TestSpecialize_ResidualErrorNamesTheDefeatedSubtree(t *testing.T) {
	tree := policyreflect.Reflect(policy.NewAnd(unjoinablePolicy{1}, unjoinablePolicy{2}))
	target := AndBuilder(LeafBuilder[policy.NoPolicy](), LeafBuilder[policy.NoPolicy]())
	_, err := Specialize[policy.And[policy.NoPolicy, policy.NoPolicy]](tree, target)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "And")
}
