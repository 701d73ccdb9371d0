// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type BaseConfig struct {
	SBOMDir     string `json:"sbomDir" mapstructure:"sbomDir" validate:"required"`
	OutputDir   string `json:"outputDir" mapstructure:"outputDir" validate:"required"`
	AnalysisDir string `json:"analysisDir" mapstructure:"analysisDir" validate:"required"`

	Workers   int `json:"workers" mapstructure:"workers" validate:"min=1,max=64"`
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize" validate:"min=1"`

	WLIterations int    `json:"wlIterations" mapstructure:"wlIterations" validate:"min=1"`
	MinGraphs    int    `json:"minGraphs" mapstructure:"minGraphs" validate:"min=2"`
	Baseline     string `json:"baseline" mapstructure:"baseline"`
}

var defaults = map[string]any{
	"sbomDir":      "standardized_boms",
	"outputDir":    "graphoutput",
	"analysisDir":  "package_analysis",
	"workers":      4,
	"cacheSize":    128,
	"wlIterations": 3,
	"minGraphs":    3,
	"baseline":     "",
}

var RuntimeBaseConfig BaseConfig

var v = validator.New()

func SetDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// ParseBaseConfig reads the configuration from viper into RuntimeBaseConfig.
func ParseBaseConfig() error {
	SetDefaults()

	var cfg BaseConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "could not unmarshal config")
	}
	if err := v.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	RuntimeBaseConfig = cfg
	return nil
}

func (c BaseConfig) Layout() workspace.Layout {
	return workspace.Layout{
		SBOMDir:     c.SBOMDir,
		OutputDir:   c.OutputDir,
		AnalysisDir: c.AnalysisDir,
	}
}
