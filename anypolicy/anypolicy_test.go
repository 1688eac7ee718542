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
package anypolicy

import (
	"testing"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/policy"
	"github.com/stretchr/testify/assert"
)

type intPolicy struct{ v int }

func (p intPolicy) Name() string                                     { return "intPolicy" }
func (p intPolicy) Check(*authctx.Unprotected, authctx.Reason) bool { return p.v > 0 }

type cloneablePolicy struct{ v int }

func (p cloneablePolicy) Name() string                                     { return "cloneablePolicy" }
func (p cloneablePolicy) Check(*authctx.Unprotected, authctx.Reason) bool { return true }
func (p cloneablePolicy) ClonePolicy() policy.Policy                      { return cloneablePolicy{v: p.v} }

func TestNew_DetectsNoCapabilitiesByDefault(t *testing.T) {
	a := New(intPolicy{v: 1})
	assert.Equal(t, CapPlain, a.Capabilities())
}

func TestNew_DetectsCloneable(t *testing.T) {
	a := New(cloneablePolicy{v: 5})
	assert.True(t, a.Capabilities().Has(CapCloneable))

	cloned, ok := a.Clone()
	assert.True(t, ok)
	v, err := Specialize[cloneablePolicy](cloned)
	assert.NoError(t, err)
	assert.Equal(t, 5, v.v)
}

func TestClone_FailsWithoutCapability(t *testing.T) {
	a := New(intPolicy{v: 1})
	_, ok := a.Clone()
	assert.False(t, ok)
}

func TestIsAndSpecialize_RoundTrip(t *testing.T) {
	a := New(intPolicy{v: 42})

	assert.True(t, Is[intPolicy](a))
	assert.False(t, Is[cloneablePolicy](a))

	v, err := Specialize[intPolicy](a)
	assert.NoError(t, err)
	assert.Equal(t, 42, v.v)

	_, err = Specialize[cloneablePolicy](a)
	assert.Error(t, err)
}

func TestSpecializeRef_ReturnsPointerToCopy(t *testing.T) {
	a := New(intPolicy{v: 7})
	ref, err := SpecializeRef[intPolicy](a)
	assert.NoError(t, err)
	assert.Equal(t, 7, ref.v)
}

func TestDefault_IsNoPolicy(t *testing.T) {
	a := Default()
	assert.True(t, Is[policy.NoPolicy](a))
	ctx := authctx.Test(struct{}{}).Unprotected()
	assert.True(t, a.Check(ctx, authctx.Response()))
}

func TestCheck_DelegatesToInner(t *testing.T) {
	ctx := authctx.Test(struct{}{}).Unprotected()
	a := New(intPolicy{v: 0})
	assert.False(t, a.Check(ctx, authctx.Response()))
}
