package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-d", "postgres://x", "-x", "1"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "postgres://x"},
		},
		{
			name:         "equals form",
			args:         []string{"--config=alt.json", "-a", ":8000"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag followed by another flag keeps no value",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-w", "30", "-w", "60"},
			allowedFlags: []string{"-w"},
			want:         []string{"-w", "30", "-w", "60"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", "/etc/sidhi/short.json"}
	assert.Equal(t, "/etc/sidhi/short.json", ConfigFileFlag())

	os.Args = []string{"testbin", "-config", "/etc/sidhi/long.json", "-a", ":8000"}
	assert.Equal(t, "/etc/sidhi/long.json", ConfigFileFlag())

	os.Args = []string{"testbin", "-x", "1"}
	assert.Empty(t, ConfigFileFlag())

	os.Args = []string{"testbin", "-c", "/1.json", "-config", "/2.json"}
	assert.Equal(t, "/2.json", ConfigFileFlag())
}
