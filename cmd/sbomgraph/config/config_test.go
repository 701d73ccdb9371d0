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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseConfig(t *testing.T) {
	t.Run("should fall back to the defaults", func(t *testing.T) {
		viper.Reset()

		require.NoError(t, ParseBaseConfig())
		assert.Equal(t, BaseConfig{
			SBOMDir:      "standardized_boms",
			OutputDir:    "graphoutput",
			AnalysisDir:  "package_analysis",
			Workers:      4,
			CacheSize:    128,
			WLIterations: 3,
			MinGraphs:    3,
		}, RuntimeBaseConfig)
	})

	t.Run("should use the provided config values", func(t *testing.T) {
		viper.Reset()
		viper.Set("outputDir", "out")
		viper.Set("workers", 8)
		viper.Set("baseline", "sbomgold")

		require.NoError(t, ParseBaseConfig())
		assert.Equal(t, "out", RuntimeBaseConfig.OutputDir)
		assert.Equal(t, 8, RuntimeBaseConfig.Workers)
		assert.Equal(t, "sbomgold", RuntimeBaseConfig.Baseline)
		assert.Equal(t, "out", RuntimeBaseConfig.Layout().OutputDir)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		for key, value := range map[string]any{
			"workers":      0,
			"minGraphs":    1,
			"wlIterations": 0,
			"outputDir":    "",
		} {
			viper.Reset()
			viper.Set(key, value)
			assert.Error(t, ParseBaseConfig(), key)
		}
	})

	t.Run("should keep the previous config on error", func(t *testing.T) {
		viper.Reset()
		viper.Set("workers", 2)
		require.NoError(t, ParseBaseConfig())

		viper.Set("workers", 100)
		assert.Error(t, ParseBaseConfig())
		assert.Equal(t, 2, RuntimeBaseConfig.Workers)
	})
	viper.Reset()
}
