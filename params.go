// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

// TrailCompression selects the codec used for packed trail blocks that
// roll off the working window (§4.1, §6).
type TrailCompression int

const (
	CompressionNone TrailCompression = iota
	CompressionGeneric
)

// ProfileLevel selects whether solve statistics are mirrored onto
// Prometheus metrics via package metrics (§6): ProfileNone leaves a bound
// metrics.Collector's Sync a no-op, ProfileNormal lets it push. The
// profile_file/export_file event log is independent, gated by its own
// filename parameter below.
type ProfileLevel int

const (
	ProfileNone ProfileLevel = iota
	ProfileNormal
)

// TraceLevel selects whether the mandatory trace monitor logs anything,
// as a coarse override on top of trace_search/trace_propagation: at
// TraceNormal both categories log regardless of their own flags; at
// TraceNone each category still logs if its own flag is set (§6).
type TraceLevel int

const (
	TraceNone TraceLevel = iota
	TraceNormal
)

// Parameters configures a Solver at construction time, matching the
// `Solver::new(name, parameters)` factory from base spec §6.
type Parameters struct {
	TrailCompression TrailCompression `mapstructure:"trail_compression"`
	TrailBlockSize   int              `mapstructure:"trail_block_size"`
	ArraySplitSize   int              `mapstructure:"array_split_size"`
	StoreNames       bool             `mapstructure:"store_names"`
	ProfileLevel     ProfileLevel     `mapstructure:"profile_level"`
	TraceLevel       TraceLevel       `mapstructure:"trace_level"`
	NameAllVariables bool             `mapstructure:"name_all_variables"`

	// Configuration flags (§6), equivalent to environment/CLI toggles.
	TracePropagation bool   `mapstructure:"trace_propagation"`
	TraceSearch      bool   `mapstructure:"trace_search"`
	ShowConstraints  bool   `mapstructure:"show_constraints"`
	NoSolve          bool   `mapstructure:"no_solve"`
	ProfileFile      string `mapstructure:"profile_file"`
	ExportFile       string `mapstructure:"export_file"`
}

// DefaultParameters returns the default Parameters to pass to cop.New:
// trail block size 8000, array split size 16, names stored, everything
// else off.
func DefaultParameters() Parameters {
	return Parameters{
		TrailBlockSize: 8000,
		ArraySplitSize: 16,
		StoreNames:     true,
	}
}
