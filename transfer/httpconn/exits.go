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
package httpconn

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

// RequestContext authenticates gctx and returns the typed Context a
// FrontendPolicy constructor (supplied by the caller's route handler) is
// built against.
func (c *Connector) RequestContext(gctx *gin.Context) (authctx.Context[Identity], error) {
	identity, err := c.Authenticate(gctx)
	if err != nil {
		return authctx.Context[Identity]{}, err
	}
	requestID := gctx.GetHeader("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return authctx.New(identity, gctx.FullPath(), requestID), nil
}

// BoxBody wraps the request body (already bound by gctx.ShouldBind or
// similar) into a PCon under the policy the caller's route constructs
// from ctx, mirroring FrontendPolicy::from_request in the original.
func BoxBody[T any, P policy.Policy](body T, ctx authctx.Context[Identity], build func(authctx.Context[Identity]) P) pcon.PCon[T, P] {
	return pcon.New(body, build(ctx))
}

// WriteJSON discharges c against authctx.Response and writes the result
// as a JSON response body. If the policy refuses, gctx is aborted with
// 403 and nothing about the payload is written.
func WriteJSON[T any, P policy.Policy](gctx *gin.Context, actx authctx.Context[Identity], c pcon.PCon[T, P], status int) error {
	v, err := pcon.Discharge(c, actx.Unprotected(), authctx.Response())
	if err != nil {
		gctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return err
	}
	gctx.JSON(status, v)
	return nil
}

// SetCookie discharges c against authctx.Cookie(name) and, if granted,
// sets an HTTP cookie carrying the disclosed string value.
func SetCookie[P policy.Policy](gctx *gin.Context, actx authctx.Context[Identity], name string, c pcon.PCon[string, P], maxAge int, path, domain string, secure, httpOnly bool) error {
	v, err := pcon.Discharge(c, actx.Unprotected(), authctx.Cookie(name))
	if err != nil {
		return err
	}
	gctx.SetCookie(name, v, maxAge, path, domain, secure, httpOnly)
	return nil
}

// Redirect discharges c (the destination URL) against
// authctx.Redirect(dest) and, if granted, issues an HTTP redirect to it.
// dest is the same destination the caller boxed into c, passed un-boxed
// alongside it -- the same pre-discharge-value pattern WriteColumn uses
// for its query -- so a policy that allows or denies based on where the
// request is being redirected to can actually see that destination at
// Check time, instead of the check always running against an empty
// placeholder.
func Redirect[P policy.Policy](gctx *gin.Context, actx authctx.Context[Identity], dest string, c pcon.PCon[string, P], status int) error {
	v, err := pcon.Discharge(c, actx.Unprotected(), authctx.Redirect(dest))
	if err != nil {
		gctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return err
	}
	gctx.Redirect(status, v)
	return nil
}

// AuthorizationMiddleware enforces a resource->roles mapping the same
// way the teacher's authz middleware does, but against an Identity built
// by Connector.Authenticate rather than a value stashed in gin's
// per-request key/value store.
func AuthorizationMiddleware(resourceRoles map[string][]string, conn *Connector) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if len(resourceRoles) == 0 {
			gctx.Next()
			return
		}
		identity, err := conn.Authenticate(gctx)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		resourcePath := gctx.FullPath()
		if resourcePath == "" {
			resourcePath = gctx.Request.URL.Path
		}
		methodKey := gctx.Request.Method + " " + resourcePath
		allowed, found := resourceRoles[methodKey]
		if !found {
			gctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		for _, role := range allowed {
			if identity.HasRole(role) {
				gctx.Next()
				return
			}
		}
		gctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
