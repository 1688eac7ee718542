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

// Package critical backs the pcon critical-region gated exit. A critical
// region never runs a runtime policy check against the payload it is
// handed -- it is sound only because the code inside it has already been
// reviewed out of band, the same contract the original places on its
// critical regions and enforces with an external compile-time lint
// rather than anything the runtime can see.
//
// Registry adds one thing beyond that external-review contract: a
// runtime signature check, so that a critical region whose audited
// signature was never registered (a typo, a forgotten deployment step,
// a region added to the code but never signed off) fails loudly instead
// of silently running unreviewed code. This is an enrichment beyond
// what the original specifies, not a requirement of it -- recorded as
// an open-question decision in this module's design notes.
package critical

import (
	"crypto/rand"
	"crypto/subtle"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Signature identifies a specific critical region and the proof that its
// review sign-off produced.
type Signature struct {
	Region string
	Proof  string
}

type commitment struct {
	salt []byte
	hash []byte
}

type registry struct {
	mu      sync.RWMutex
	signoff map[string]commitment
}

var (
	instance *registry
	once     sync.Once
)

func getInstance() *registry {
	once.Do(func() {
		instance = &registry{signoff: make(map[string]commitment)}
	})
	return instance
}

// Register records that region has been reviewed and signed off with
// proof, committing to it the same way the teacher's hashed-credential
// store commits to a password: an Argon2id-derived hash under a random
// salt, never the proof itself. Typically called once at startup for
// every critical region the binary ships.
func Register(region, proof string) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		panic("critical: failed to generate salt: " + err.Error())
	}
	hash := argon2.IDKey([]byte(proof), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	r := getInstance()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signoff[region] = commitment{salt: salt, hash: hash}
}

// Verify reports whether sig matches a registered sign-off.
func Verify(sig Signature) bool {
	r := getInstance()
	r.mu.RLock()
	c, ok := r.signoff[sig.Region]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(sig.Proof), c.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(c.hash, got) == 1
}

// Reset clears every registered sign-off. Exposed for tests that need a
// clean registry between cases since it is process-global.
func Reset() {
	r := getInstance()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signoff = make(map[string]commitment)
}
