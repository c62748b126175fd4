package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	paths := [][]string{
		{"migrate"},
		{"race", "create"},
		{"race", "current"},
		{"runner", "mark"},
		{"checkpoint", "init"},
		{"basestation", "list"},
		{"export"},
		{"import"},
		{"results"},
		{"maint", "clear"},
	}
	for _, path := range paths {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}

func TestBindFlagsFromEnv(t *testing.T) {
	t.Setenv("RTS_LOG_LEVEL", "debug")
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	var level, store string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&level, "log-level", "info", "")
	cmd.Flags().StringVar(&store, "store", "postgres", "")
	bindFlags(cmd, v)

	assert.Equal(t, "debug", level)
	assert.Equal(t, "postgres", store)
}
