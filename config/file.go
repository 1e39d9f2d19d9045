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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dirpx.dev/perform/apis"
)

// ErrUnknownValue is returned when a config file names an unknown enum value.
var ErrUnknownValue = errors.New("perform(config): unknown value")

// File is the on-disk YAML representation of a Config.
// Missing keys keep their defaults.
type File struct {
	Memoize       *bool  `yaml:"memoize,omitempty"`
	ResolveDelay  string `yaml:"resolve_delay,omitempty"`
	CacheStrategy string `yaml:"cache_strategy,omitempty"`
	Shards        int    `yaml:"shards,omitempty"`
	Compression   string `yaml:"compression,omitempty"`
	MaxUnwrap     *int   `yaml:"max_unwrap,omitempty"`
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (apis.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return apis.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of DefaultConfig.
func Parse(data []byte) (apis.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return apis.Config{}, err
	}
	return f.Options()
}

// Options converts f into a Config.
func (f File) Options() (apis.Config, error) {
	opts := make([]Option, 0, 6)
	if f.Memoize != nil {
		opts = append(opts, WithMemoize(*f.Memoize))
	}
	if f.ResolveDelay != "" {
		d, err := time.ParseDuration(f.ResolveDelay)
		if err != nil {
			return apis.Config{}, fmt.Errorf("resolve_delay: %w", err)
		}
		if d < 0 {
			return apis.Config{}, fmt.Errorf("resolve_delay %s: %w", f.ResolveDelay, apis.ErrInvalidArgument)
		}
		opts = append(opts, WithResolveDelay(d))
	}
	if f.CacheStrategy != "" {
		s, err := ParseCacheStrategy(f.CacheStrategy)
		if err != nil {
			return apis.Config{}, err
		}
		opts = append(opts, WithCacheStrategy(s))
	}
	if f.Shards != 0 {
		opts = append(opts, WithShards(f.Shards))
	}
	if f.Compression != "" {
		c, err := ParseCompression(f.Compression)
		if err != nil {
			return apis.Config{}, err
		}
		opts = append(opts, WithCompression(c))
	}
	if f.MaxUnwrap != nil {
		opts = append(opts, WithMaxUnwrap(*f.MaxUnwrap))
	}
	return NewConfig(opts...), nil
}

// ParseCacheStrategy parses the String form of an apis.CacheStrategy.
func ParseCacheStrategy(s string) (apis.CacheStrategy, error) {
	for _, v := range []apis.CacheStrategy{apis.Unsynchronized, apis.Locked, apis.Sharded} {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: cache_strategy %q", ErrUnknownValue, s)
}

// ParseCompression parses the String form of an apis.Compression.
func ParseCompression(s string) (apis.Compression, error) {
	for _, v := range []apis.Compression{apis.CompressionNone, apis.CompressionZstd, apis.CompressionLZ4} {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: compression %q", ErrUnknownValue, s)
}
