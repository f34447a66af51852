// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config loads Solver Parameters from a YAML file, the way
// github.com/irifrance/gini's cmd/gini loads flags: parse into a loose
// map first, then decode into the typed struct so unknown keys are
// reported rather than silently dropped.
package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/go-air/cop"
)

var trailCompressionNames = map[string]cop.TrailCompression{
	"none":    cop.CompressionNone,
	"generic": cop.CompressionGeneric,
}

var profileLevelNames = map[string]cop.ProfileLevel{
	"none":   cop.ProfileNone,
	"normal": cop.ProfileNormal,
}

var traceLevelNames = map[string]cop.TraceLevel{
	"none":   cop.TraceNone,
	"normal": cop.TraceNormal,
}

// levelStringHook lets the enum-valued fields (trail_compression,
// profile_level, trace_level) be written as bare words in YAML instead of
// their underlying integer values.
func levelStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	switch to {
	case reflect.TypeOf(cop.TrailCompression(0)):
		v, ok := trailCompressionNames[s]
		if !ok {
			return data, fmt.Errorf("config: unknown trail_compression %q", s)
		}
		return v, nil
	case reflect.TypeOf(cop.ProfileLevel(0)):
		v, ok := profileLevelNames[s]
		if !ok {
			return data, fmt.Errorf("config: unknown profile_level %q", s)
		}
		return v, nil
	case reflect.TypeOf(cop.TraceLevel(0)):
		v, ok := traceLevelNames[s]
		if !ok {
			return data, fmt.Errorf("config: unknown trace_level %q", s)
		}
		return v, nil
	}
	return data, nil
}

// Load reads a YAML configuration file at path and decodes it into a
// Parameters value seeded with cop.DefaultParameters. Fields absent from
// the file keep their default.
func Load(path string) (cop.Parameters, error) {
	params := cop.DefaultParameters()

	raw, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("config: %w", err)
	}

	var loose map[string]interface{}
	if err := yaml.Unmarshal(raw, &loose); err != nil {
		return params, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if loose == nil {
		return params, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFunc(levelStringHook),
	})
	if err != nil {
		return params, fmt.Errorf("config: building decoder: %w", err)
	}
	if err := decoder.Decode(loose); err != nil {
		return params, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return params, nil
}
