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
package critical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify_UnregisteredRegionFails(t *testing.T) {
	Reset()
	assert.False(t, Verify(Signature{Region: "never-registered", Proof: "whatever"}))
}

func TestRegisterAndVerify_MatchingProofSucceeds(t *testing.T) {
	Reset()
	Register("blank-sign", "reviewed-by-alice-2026-01-01")
	assert.True(t, Verify(Signature{Region: "blank-sign", Proof: "reviewed-by-alice-2026-01-01"}))
}

func TestVerify_WrongProofFails(t *testing.T) {
	Reset()
	Register("blank-sign", "reviewed-by-alice-2026-01-01")
	assert.False(t, Verify(Signature{Region: "blank-sign", Proof: "forged"}))
}

func TestReset_ClearsAllSignoffs(t *testing.T) {
	Reset()
	Register("region-a", "proof-a")
	Reset()
	assert.False(t, Verify(Signature{Region: "region-a", Proof: "proof-a"}))
}
