// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/cop"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	params, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Equal(t, cop.DefaultParameters(), params)
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	params, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cop.DefaultParameters(), params)
}

func TestLoadOverridesNamedFields(t *testing.T) {
	path := writeConfig(t, `
trail_block_size: 4096
array_split_size: 8
store_names: false
name_all_variables: true
profile_file: /tmp/profile.bin
`)
	params, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, params.TrailBlockSize)
	assert.Equal(t, 8, params.ArraySplitSize)
	assert.False(t, params.StoreNames)
	assert.True(t, params.NameAllVariables)
	assert.Equal(t, "/tmp/profile.bin", params.ProfileFile)

	// fields absent from the file keep cop.DefaultParameters' values
	assert.Equal(t, cop.ProfileNone, params.ProfileLevel)
}

func TestLoadDecodesEnumFieldsFromBareWords(t *testing.T) {
	path := writeConfig(t, `
trail_compression: generic
profile_level: normal
trace_level: normal
`)
	params, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cop.CompressionGeneric, params.TrailCompression)
	assert.Equal(t, cop.ProfileNormal, params.ProfileLevel)
	assert.Equal(t, cop.TraceNormal, params.TraceLevel)
}

func TestLoadRejectsUnknownEnumWord(t *testing.T) {
	path := writeConfig(t, "trace_level: extreme\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "not_a_real_field: 1\n")
	_, err := Load(path)
	assert.Error(t, err)
}
