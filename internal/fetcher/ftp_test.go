package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{"default port added", "ftp://assessor.example.gov/pub/snapshot.xlsx", "assessor.example.gov:21", "/pub/snapshot.xlsx", false},
		{"explicit port kept", "ftp://assessor.example.gov:2121/data.xlsx", "assessor.example.gov:2121", "/data.xlsx", false},
		{"wrong scheme", "https://example.com/file", "", "", true},
		{"empty path", "ftp://example.com", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestForURL(t *testing.T) {
	httpf := newTestFetcher()
	ftpf := NewFTPFetcher(FTPOptions{})

	f, err := ForURL("https://example.com/snapshot.xlsx", httpf, ftpf)
	require.NoError(t, err)
	assert.Same(t, httpf, f)

	f, err = ForURL("ftp://example.com/snapshot.xlsx", httpf, ftpf)
	require.NoError(t, err)
	assert.Same(t, ftpf, f)

	_, err = ForURL("gopher://example.com/x", httpf, ftpf)
	assert.Error(t, err)
}
