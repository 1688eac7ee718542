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

// Package logging wraps zap the way the rest of this module's transfer
// connectors already expect a logger to behave (Sugar()-style printf
// methods), instead of reaching for the standard library's log package.
// A Logger is injected into the httpconn and sqlconn connector
// constructors rather than
// pulled from a package global, so tests can pass zaptest loggers and
// production code can pass a configured zap.Logger.
package logging

import "go.uber.org/zap"

// Logger is the small surface every connector in this module logs
// through. It never logs a payload's contents directly -- callers pass
// policy names, reasons, and route metadata, never the disclosed value
// itself, so a misconfigured log sink can't become a side channel.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ZapLogger adapts a *zap.Logger to the Logger interface via its sugared
// form: each method forwards to the matching printf-style Sugar() method
// (Infof, Warnf, Errorf, Debugf).
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps base. Passing zap.NewNop() is the idiomatic choice
// for tests that don't want to assert on log output.
func NewZapLogger(base *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: base.Sugar()}
}

func (l *ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infof(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnf(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorf(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugf(msg, args...) }

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *ZapLogger {
	return NewZapLogger(zap.NewNop())
}
