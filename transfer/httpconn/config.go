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

// Package httpconn is the HTTP cross-boundary transfer connector: it
// turns an authenticated gin request into the authctx.Context a
// FrontendPolicy constructor is built against, and turns a PCon back
// into a response, cookie, or redirect once the container's own policy
// has granted.
package httpconn

// IdentityConfig configures how incoming requests are authenticated
// before a FrontendPolicy can be constructed from them.
type IdentityConfig struct {
	BasicAuth *BasicAuthConfig
	JWT       *JWTConfig
	// SkipPaths bypasses authentication entirely for the named path
	// prefixes (health checks, metrics scrape endpoints).
	SkipPaths []string
}

type BasicAuthConfig struct {
	Enabled bool
	Users   []BasicUser
}

type BasicUser struct {
	Username       string
	Password       string
	PasswordHashed bool
	Roles          []string
}

type JWTConfig struct {
	Enabled       bool
	IssuerURL     string
	JWKSUrl       string
	UsernameClaim string
	ScopeClaim    string
	Audience      *string
}

// Identity is the erased, typed app data an authctx.Context carries once
// a request has been authenticated. Every FrontendPolicy constructor in
// this module's callers is built against an Identity, never against the
// raw *http.Request, so a policy never has to parse headers itself.
type Identity struct {
	Authenticated bool
	Subject       string
	Roles         []string
	Claims        map[string]any
	Route         string
	Method        string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
