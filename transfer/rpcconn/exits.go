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
package rpcconn

import (
	"bytes"
	"context"
	"encoding/gob"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

// Send discharges c against reason and, only if granted, gob-encodes the
// disclosed payload and ships it across client's connection. Nothing
// about a denied payload -- not even its shape -- reaches the wire.
func Send[T any, P policy.Policy](ctx context.Context, client *Client, actx *authctx.Unprotected, reason authctx.Reason, c pcon.PCon[T, P]) error {
	v, err := pcon.Discharge(c, actx, reason)
	if err != nil {
		return &errs.ConnectorError{Connector: "rpcconn", Op: "Send", Err: err}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return &errs.ConnectorError{Connector: "rpcconn", Op: "Send", Err: err}
	}
	if _, err := client.send(ctx, wrapperspb.Bytes(buf.Bytes())); err != nil {
		return &errs.ConnectorError{Connector: "rpcconn", Op: "Send", Err: err}
	}
	return nil
}

// Receive decodes req's gob-encoded payload into T and re-boxes it under
// the policy build constructs, the same "the receiver always chooses
// its own policy" discipline httpconn.BoxBody applies to request
// bodies: an RPC payload is never trusted to carry its own policy across
// the wire.
func Receive[T any, P policy.Policy](req *wrapperspb.BytesValue, build func(T) P) (pcon.PCon[T, P], error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(req.GetValue())).Decode(&v); err != nil {
		var zero pcon.PCon[T, P]
		return zero, &errs.ConnectorError{Connector: "rpcconn", Op: "Receive", Err: err}
	}
	return pcon.New(v, build(v)), nil
}
