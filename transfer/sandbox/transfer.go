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
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/brownsys/sesame-go/authctx"
	"github.com/brownsys/sesame-go/errs"
	"github.com/brownsys/sesame-go/pcon"
	"github.com/brownsys/sesame-go/policy"
)

// FastTransfer is the fast-path contract a type opts into, the Go
// analogue of the original's TypeInSandbox derive: a type whose
// representation is cheap and safe to hand across the boundary as raw
// bytes implements it directly instead of paying for gob's reflection-
// driven encoding.
type FastTransfer interface {
	MarshalFast() ([]byte, error)
}

// FastTransferInto is implemented on a pointer receiver by a type that
// also wants the fast decode path.
type FastTransferInto interface {
	UnmarshalFast([]byte) error
}

func encodeValue(v any) (fast bool, payload []byte, err error) {
	if ft, ok := v.(FastTransfer); ok {
		payload, err = ft.MarshalFast()
		return true, payload, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return false, nil, err
	}
	return false, buf.Bytes(), nil
}

func decodeValue[T any](fast bool, payload []byte) (T, error) {
	var v T
	if fast {
		dest, ok := any(&v).(FastTransferInto)
		if !ok {
			return v, fmt.Errorf("sandbox: %T does not implement FastTransferInto for fast decode", v)
		}
		return v, dest.UnmarshalFast(payload)
	}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// envelope is the wire shape crossing the region boundary in both
// directions. Policy travels alongside the payload as the concrete type
// P -- known statically on both sides of the boundary, since a sandbox
// worker is built from the same module as its caller -- rather than as
// a type-erased dynamic wrapper, which the original needs only because
// its FFI boundary is also a language boundary.
type envelope[T any, P policy.Policy] struct {
	Fast    bool
	Payload []byte
	Policy  P
}

// Transform sends c's disclosed payload into exec's isolated region,
// lets handler run there, and re-checks the (unchanged) policy against
// reason before disclosing the region's result to the caller. A denial
// on either side of the boundary -- before crossing in, or before
// crossing back out -- returns an error instead of the payload.
func Transform[T any, P policy.Policy](ctx context.Context, exec Executor, actx *authctx.Unprotected, reason authctx.Reason, c pcon.PCon[T, P]) (pcon.PCon[T, P], error) {
	var zero pcon.PCon[T, P]

	t, err := pcon.Discharge(c, actx, reason)
	if err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}

	fast, payload, err := encodeValue(t)
	if err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}
	in := envelope[T, P]{Fast: fast, Payload: payload, Policy: c.Policy()}
	var inBuf bytes.Buffer
	if err := gob.NewEncoder(&inBuf).Encode(in); err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}

	outBytes, err := exec.Run(ctx, inBuf.Bytes())
	if err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}

	var out envelope[T, P]
	if err := gob.NewDecoder(bytes.NewReader(outBytes)).Decode(&out); err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}

	// Re-check the policy the region handed back before disclosing the
	// transformed value: a worker that tampered with its own copy of the
	// policy does not get to grant itself a disclosure the caller never
	// authorized.
	if !out.Policy.Check(actx, reason) {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: &errs.PolicyDenied{Policy: out.Policy.Name(), Reason: reason.String()}}
	}

	result, err := decodeValue[T](out.Fast, out.Payload)
	if err != nil {
		return zero, &errs.ConnectorError{Connector: "sandbox", Op: "Transform", Err: err}
	}
	return pcon.New(result, out.Policy), nil
}

// Handler is what runs inside the isolated region: it receives the
// disclosed payload and its policy and returns the transformed payload.
// Dispatch wires a Handler up to the raw byte protocol Transform speaks.
type Handler[T any, P policy.Policy] func(t T, p P) (T, error)

// Dispatch decodes an incoming envelope, runs handler against its
// payload and policy, and re-encodes the result as an outgoing
// envelope -- the function a LoopbackExecutor or a ProcessExecutor's
// worker binary calls for every request it receives.
func Dispatch[T any, P policy.Policy](payload []byte, handler Handler[T, P]) ([]byte, error) {
	var in envelope[T, P]
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&in); err != nil {
		return nil, err
	}
	t, err := decodeValue[T](in.Fast, in.Payload)
	if err != nil {
		return nil, err
	}

	result, err := handler(t, in.Policy)
	if err != nil {
		return nil, err
	}

	fast, resultPayload, err := encodeValue(result)
	if err != nil {
		return nil, err
	}
	out := envelope[T, P]{Fast: fast, Payload: resultPayload, Policy: in.Policy}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
