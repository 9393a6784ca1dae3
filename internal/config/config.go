// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves run settings from layered sources into one
// immutable types.Config.
//
// Precedence, highest first: explicit command-line flag, environment
// variable (PB2OBSIDIAN_*), .env files (later files override earlier ones),
// YAML config file, built-in default.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/pb2obsidian/pkg/types"
)

// ErrInvalidConfig is wrapped by every resolution failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment and .env variable names.
const EnvPrefix = "PB2OBSIDIAN_"

// Setting keys. Layered keys can come from any source; the rest are
// flag-only.
const (
	KeyImageWidth     = "image_width"
	KeyMDDir          = "md_dir"
	KeyImageDir       = "image_dir"
	KeyBackend        = "backend"
	KeyFrontmatter    = "frontmatter"
	KeySubstringPaths = "substring_paths"

	KeyTitle    = "title"
	KeySkipNote = "skip_note"
	KeyVerbose  = "verbose"
)

// layered marks keys that fall back past the command line.
var layered = map[string]bool{
	KeyImageWidth:     true,
	KeyMDDir:          true,
	KeyImageDir:       true,
	KeyBackend:        true,
	KeyFrontmatter:    true,
	KeySubstringPaths: true,
}

// Sources carries the raw values of every configuration layer. Maps may be
// nil.
type Sources struct {
	// Flags holds only flags set explicitly on the command line, by key.
	Flags map[string]string

	// Env is the process environment by variable name.
	Env map[string]string

	// DotEnv holds parsed .env files, lowest precedence first.
	DotEnv []map[string]string

	// File holds config file values by key.
	File map[string]string
}

// Default returns the built-in settings.
func Default() types.Config {
	return types.Config{Backend: types.BackendPandoc}
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// Resolve merges src over the defaults. Malformed numbers or booleans and
// unknown backends fail with ErrInvalidConfig naming the key and value.
func Resolve(src Sources) (types.Config, error) {
	cfg := Default()

	if v, ok := src.lookup(KeyImageWidth); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return types.Config{}, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidConfig, KeyImageWidth, v)
		}
		cfg.ImageWidth = n
	}
	if v, ok := src.lookup(KeyMDDir); ok {
		cfg.MDDir = v
	}
	if v, ok := src.lookup(KeyImageDir); ok {
		cfg.ImageDir = v
	}
	if v, ok := src.lookup(KeyBackend); ok {
		cfg.Backend = types.Backend(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := src.lookup(KeyTitle); ok {
		cfg.Title = v
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyFrontmatter, &cfg.Frontmatter},
		{KeySubstringPaths, &cfg.SubstringPaths},
		{KeySkipNote, &cfg.SkipNote},
		{KeyVerbose, &cfg.Verbose},
	}
	for _, b := range bools {
		v, ok := src.lookup(b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return types.Config{}, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidConfig, b.key, v)
		}
		*b.dst = parsed
	}

	if err := validate(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func validate(c *types.Config) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ImageWidth, validation.When(c.ImageWidth != 0, validation.Min(1))),
		validation.Field(&c.Backend, validation.Required, validation.In(types.BackendPandoc, types.BackendHTML)),
	)
}

// lookup returns the highest-precedence non-empty value for key.
func (s Sources) lookup(key string) (string, bool) {
	if v := s.Flags[key]; v != "" {
		return v, true
	}
	if !layered[key] {
		return "", false
	}
	if v := s.Env[EnvName(key)]; v != "" {
		return v, true
	}
	for i := len(s.DotEnv) - 1; i >= 0; i-- {
		if v := s.DotEnv[i][EnvName(key)]; v != "" {
			return v, true
		}
	}
	if v := s.File[key]; v != "" {
		return v, true
	}
	return "", false
}

// EnvMap turns os.Environ-style "KEY=value" pairs into a map.
func EnvMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}
