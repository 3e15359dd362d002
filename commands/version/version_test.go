package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		give      string
		wantMajor uint64
		wantPre   string
		wantErr   string
	}{
		{name: "empty is dev", give: "", wantMajor: 0, wantPre: "dev"},
		{name: "v prefix", give: "v1.4.0", wantMajor: 1},
		{name: "pre-release and metadata", give: "2.0.0-rc.1+abc123", wantMajor: 2, wantPre: "rc.1"},
		{name: "invalid", give: "not-a-version", wantErr: `invalid build version "not-a-version"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse(tt.give)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMajor, v.Major())
			assert.Equal(t, tt.wantPre, v.Prerelease())
		})
	}
}

func TestNewCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		want    string
		wantErr bool
	}{
		{
			name:    "release",
			version: "v1.4.0",
			want:    "sc v1.4.0\ntemplate format version: 1\n",
		},
		{
			name:    "stamped pre-release",
			version: "1.5.0-rc.1+abc123",
			want:    "sc 1.5.0-rc.1+abc123\npre-release: rc.1\nbuild: abc123\ntemplate format version: 1\n",
		},
		{
			name:    "invalid",
			version: "latest",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := NewCommand(tt.version)
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
