// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ParseConfigJSON decodes a kebab-case JSON document into a Config,
// starting from DefaultConfig so any key the document omits keeps its
// default value. An unrecognized key is a parse error rather than being
// silently ignored, matching the strict-config posture the rest of the
// ambient stack uses for operator-supplied files.
func ParseConfigJSON(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("limiter: parsing json config: %w", err)
	}
	return cfg, nil
}

// ParseConfigTOML decodes a kebab-case TOML document into a Config the
// same way ParseConfigJSON does for JSON: defaults first, strict about
// unknown keys.
func ParseConfigTOML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("limiter: parsing toml config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("limiter: parsing toml config: unknown key(s): %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}
