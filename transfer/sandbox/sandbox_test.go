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
package sandbox

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

type allowAll struct{}

func (allowAll) Name() string                                     { return "allowAll" }
func (allowAll) Check(*authctx.Unprotected, authctx.Reason) bool { return true }

type denyAll struct{}

func (denyAll) Name() string                                     { return "denyAll" }
func (denyAll) Check(*authctx.Unprotected, authctx.Reason) bool { return false }

func doubler(t int, _ allowAll) (int, error) { return t * 2, nil }

func TestTransform_RunsHandlerInLoopbackRegion(t *testing.T) {
	exec := LoopbackExecutor{Handle: func(payload []byte) ([]byte, error) {
		return Dispatch[int, allowAll](payload, doubler)
	}}
	ctx := authctx.Test(struct{}{}).Unprotected()
	boxed := pcon.New(21, allowAll{})

	out, err := Transform(context.Background(), exec, ctx, authctx.Response(), boxed)
	require.NoError(t, err)
	v, _ := pcon.Discharge(out, ctx, authctx.Response())
	assert.Equal(t, 42, v)
}

func TestTransform_DeniedBeforeCrossingNeverInvokesRegion(t *testing.T) {
	invoked := false
	exec := LoopbackExecutor{Handle: func(payload []byte) ([]byte, error) {
		invoked = true
		return Dispatch[int, denyAll](payload, func(t int, _ denyAll) (int, error) { return t, nil })
	}}
	ctx := authctx.Test(struct{}{}).Unprotected()
	boxed := pcon.New(21, denyAll{})

	_, err := Transform(context.Background(), exec, ctx, authctx.Response(), boxed)
	assert.Error(t, err)
	assert.False(t, invoked)
}

type fastPair struct{ A, B int32 }

func (f fastPair) MarshalFast() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.A))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.B))
	return buf, nil
}

func (f *fastPair) UnmarshalFast(b []byte) error {
	f.A = int32(binary.LittleEndian.Uint32(b[0:4]))
	f.B = int32(binary.LittleEndian.Uint32(b[4:8]))
	return nil
}

func swapPair(p fastPair, _ allowAll) (fastPair, error) {
	return fastPair{A: p.B, B: p.A}, nil
}

func TestTransform_UsesFastTransferPathWhenImplemented(t *testing.T) {
	exec := LoopbackExecutor{Handle: func(payload []byte) ([]byte, error) {
		return Dispatch[fastPair, allowAll](payload, swapPair)
	}}
	ctx := authctx.Test(struct{}{}).Unprotected()
	boxed := pcon.New(fastPair{A: 1, B: 2}, allowAll{})

	out, err := Transform(context.Background(), exec, ctx, authctx.Response(), boxed)
	require.NoError(t, err)
	v, _ := pcon.Discharge(out, ctx, authctx.Response())
	assert.Equal(t, fastPair{A: 2, B: 1}, v)
}

var _ policy.Policy = allowAll{}
