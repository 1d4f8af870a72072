package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDefaults(t *testing.T) {
	tests := []struct {
		flag string
		def  string
	}{
		{"hops", "2"},
		{"limit", "-1"},
		{"init", "false"},
		{"delete", "false"},
		{"friends", "false"},
		{"games", "false"},
		{"genres", "false"},
		{"descriptions", "false"},
		{"embed", "false"},
		{"track-visited", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := rootCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f, "flag should be registered")
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}
