/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package dispatch

import (
	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/builder"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/invoke"
)

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	cfg apis.Config
	log *zap.Logger
	inv apis.Invoker
	reg apis.Registry
	bld apis.Builder
}

func defaultOptions() options {
	return options{
		cfg: config.DefaultConfig(),
		log: zap.NewNop(),
		inv: invoke.New(),
		bld: builder.New(),
	}
}

// WithConfig sets the configuration. It is normalized before use.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithInvoker replaces the reflective invoke capability.
func WithInvoker(inv apis.Invoker) Option {
	return func(o *options) {
		if inv != nil {
			o.inv = inv
		}
	}
}

// WithRegistry pins the registry instead of building a fresh one.
func WithRegistry(reg apis.Registry) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithBuilder replaces the builder used to construct collaborators.
func WithBuilder(bld apis.Builder) Option {
	return func(o *options) {
		if bld != nil {
			o.bld = bld
		}
	}
}
