package metrics

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSystemInfo_IsCached(t *testing.T) {
	first := GetSystemInfo()
	require.NotNil(t, first)
	assert.Same(t, first, GetSystemInfo())

	assert.Equal(t, runtime.GOOS, first.OS)
	assert.Equal(t, runtime.GOARCH, first.Arch)
	assert.Equal(t, runtime.NumCPU(), first.CPULogical)
	assert.NotEmpty(t, first.Hostname)
}

func TestSystemInfo_LogArgsArePaired(t *testing.T) {
	args := (&SystemInfo{OS: "linux", ContainerRuntime: "docker"}).LogArgs()
	require.Zero(t, len(args)%2)
	assert.Contains(t, args, "container_runtime")

	args = (&SystemInfo{OS: "linux"}).LogArgs()
	assert.NotContains(t, args, "container_runtime")
}

func TestFootprint(t *testing.T) {
	ctx := context.Background()
	fp := CaptureStart(ctx)
	assert.Positive(t, fp.GoroutineStart)

	fp.Finalize(ctx)
	assert.Positive(t, fp.GoroutineEnd)
	assert.InDelta(t, fp.HeapEndMB-fp.HeapStartMB, fp.HeapDeltaMB(), 1e-9)
}

func TestOSReleaseName(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "pretty name", content: "NAME=\"Debian GNU/Linux\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n", want: "Debian GNU/Linux 12 (bookworm)"},
		{name: "name and version", content: "NAME=Alpine\nVERSION=3.20\n", want: "Alpine 3.20"},
		{name: "empty", content: "", want: ""},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strconv.Itoa(i))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			assert.Equal(t, tt.want, osReleaseName(path))
		})
	}

	assert.Empty(t, osReleaseName(filepath.Join(dir, "missing")))
}

func TestMemInfoTotalMB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	require.NoError(t, os.WriteFile(path, []byte("MemTotal:       16384000 kB\nMemFree:  100 kB\n"), 0o600))
	assert.Equal(t, uint64(16000), memInfoTotalMB(path))

	assert.Zero(t, memInfoTotalMB(filepath.Join(t.TempDir(), "missing")))
}
