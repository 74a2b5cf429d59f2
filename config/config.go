// Package config loads the calibration and decode defaults for the cwa
// decoder: an embedded TOML default, optionally overridden by a file on
// disk, both expressed with the same Options struct so BurntSushi/toml
// can decode either one directly.
package config

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed cwa.toml
var defaultConfigData []byte

// Options holds every decode and calibration option the cwa command
// accepts. TOML tags give each field its on-disk option name so an
// override file and the embedded default decode identically.
type Options struct {
	OutputFile            string  `toml:"outputFile"`
	Verbose               bool    `toml:"verbose"`
	EpochPeriod           int     `toml:"epochPeriod"`
	TimeFormat            string  `toml:"timeFormat"`
	Filter                bool    `toml:"filter"`
	StartEpochWholeMinute bool    `toml:"startEpochWholeMinute"`
	StartEpochWholeSecond bool    `toml:"startEpochWholeSecond"`
	GetStationaryBouts    bool    `toml:"getStationaryBouts"`
	StationaryStd         float64 `toml:"stationaryStd"`
	Range                 float64 `toml:"range"`
	MeanTemp              float64 `toml:"meanTemp"`

	XIntercept float64 `toml:"xIntercept"`
	YIntercept float64 `toml:"yIntercept"`
	ZIntercept float64 `toml:"zIntercept"`
	XSlope     float64 `toml:"xSlope"`
	YSlope     float64 `toml:"ySlope"`
	ZSlope     float64 `toml:"zSlope"`
	XTemp      float64 `toml:"xTemp"`
	YTemp      float64 `toml:"yTemp"`
	ZTemp      float64 `toml:"zTemp"`
}

// Default decodes the embedded cwa.toml and returns it as the baseline
// Options value, before any --config file or flag overrides are applied.
func Default() (Options, error) {
	var opts Options
	if _, err := toml.Decode(string(defaultConfigData), &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse embedded default config: %w", err)
	}
	return opts, nil
}

// LoadOverride decodes path as a TOML file and merges it onto base: any
// field present in path overwrites the corresponding field of base, and
// fields path does not set keep base's value (toml.Decode leaves
// undeclared struct fields untouched).
func LoadOverride(path string, base Options) (Options, error) {
	opts := base
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return opts, nil
}
