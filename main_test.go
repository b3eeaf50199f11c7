package main

import (
	"math"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covid-explorer/config"
	"covid-explorer/services"
)

// parseFlags parses args into the root command and resets every flag once the test ends.
func parseFlags(t *testing.T, args ...string) {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		dataPath, countries, outputDir, logLevel = "", nil, "", ""
		window, minPeriods, concurrency, snapshotMap = 0, 0, 0, false
	})
	require.NoError(t, rootCmd.ParseFlags(args))
}

func TestApplyFlags(t *testing.T) {
	parseFlags(t,
		"--data", "small.csv",
		"--countries", "Kenya,India",
		"--window", "3",
		"--snapshot-map",
	)

	c := config.Default()
	c.RollingMinPeriods = 0
	applyFlags(rootCmd, c)
	c.Resolve()

	assert.Equal(t, "small.csv", c.DataPath)
	assert.Equal(t, []string{"Kenya", "India"}, c.Countries)
	assert.Equal(t, 3, c.RollingWindow)
	assert.Equal(t, 3, c.RollingMinPeriods, "min periods follows the window")
	assert.True(t, c.SnapshotMap)
	assert.Equal(t, "output", c.OutputDir, "unset flags keep configured values")
	assert.NoError(t, c.Validate())
}

func TestLoadConfigWindowFromEnv(t *testing.T) {
	for _, w := range []string{"5", "14"} {
		t.Run(w, func(t *testing.T) {
			t.Setenv("COVID_ROLLING_WINDOW", w)
			parseFlags(t)

			c, err := loadConfig(rootCmd)
			require.NoError(t, err)
			assert.Equal(t, c.RollingWindow, c.RollingMinPeriods)
		})
	}
}

func TestLoadConfigWindowFlagKeepsFullWindow(t *testing.T) {
	parseFlags(t, "--window", "14")

	c, err := loadConfig(rootCmd)
	require.NoError(t, err)
	require.Equal(t, 14, c.RollingMinPeriods)

	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}
	rolling := services.RollingMean(values, c.RollingWindow, c.RollingMinPeriods)
	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(rolling[i]), "index %d", i)
	}
	assert.Equal(t, 7.5, rolling[13])
}

func TestLoadConfigFlagRepairsEnv(t *testing.T) {
	t.Setenv("COVID_ROLLING_MIN_PERIODS", "20")
	parseFlags(t, "--min-periods", "3")

	c, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, 7, c.RollingWindow)
	assert.Equal(t, 3, c.RollingMinPeriods)
}

func TestLoadConfigRejectsMinPeriodsAboveWindow(t *testing.T) {
	parseFlags(t, "--window", "3", "--min-periods", "5")

	_, err := loadConfig(rootCmd)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
