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

// Package testpolicy wraps a policy so test code can force a fixed
// Check outcome without changing the wrapped policy's reflected shape.
// It exists purely for unit tests exercising containers built around
// policies that are otherwise expensive or impossible to satisfy in a
// test environment (e.g. a policy that checks a production JWT issuer).
package testpolicy

import "github.com/brownsys/sesame-go/authctx"
import "github.com/brownsys/sesame-go/policy"

// Policy forces Check to return Force regardless of the wrapped policy's
// own decision, while still reporting the wrapped policy's Name and
// remaining reachable via Inner for reflection.
type Policy[P policy.Policy] struct {
	inner P
	force bool
}

// Wrap returns a Policy that always decides Check as force says.
func Wrap[P policy.Policy](inner P, force bool) Policy[P] {
	return Policy[P]{inner: inner, force: force}
}

func (t Policy[P]) Name() string {
	return "Test(" + t.inner.Name() + ")"
}

func (t Policy[P]) Check(*authctx.Unprotected, authctx.Reason) bool {
	return t.force
}

func (t Policy[P]) Inner() policy.Policy { return t.inner }
func (t Policy[P]) Value() P             { return t.inner }
