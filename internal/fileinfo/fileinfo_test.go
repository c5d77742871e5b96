package fileinfo

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

func TestInspectTextFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.TXT")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	info, err := Inspect(path, config.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, "notes.TXT", info.Name)
	assert.Equal(t, int64(6), info.Size)
	assert.Equal(t, "6 B", info.SizeHuman)
	assert.Equal(t, ".txt", info.Extension)
	assert.True(t, info.IsFile)
	assert.False(t, info.IsDir)
	assert.False(t, info.Binary)
	assert.True(t, info.Supported)
	assert.False(t, info.Ignored)
	assert.Contains(t, info.MIMEType, "text/plain")
	// md5("hello\n")
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", info.MD5)
	if runtime.GOOS != "windows" {
		assert.Equal(t, "0644", info.Mode)
	}
}

func TestInspectBinaryFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03, 0x80, 0x81, 0x00, 0x9f}, 0o755))

	info, err := Inspect(path, config.DefaultCatalog())
	require.NoError(t, err)
	assert.True(t, info.Binary)
	assert.False(t, info.Supported)
	assert.Equal(t, "application/octet-stream", info.MIMEType)
	if runtime.GOOS != "windows" {
		assert.True(t, info.Executable)
	}
}

func TestInspectDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "node_modules")
	require.NoError(t, os.Mkdir(dir, 0o755))

	info, err := Inspect(dir, config.DefaultCatalog())
	require.NoError(t, err)
	assert.True(t, info.IsDir)
	assert.False(t, info.IsFile)
	assert.True(t, info.Ignored)
	assert.Empty(t, info.MD5)
	assert.Empty(t, info.MIMEType)
}

func TestInspectSymlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "real.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a":1}`), 0o644))
	link := filepath.Join(dir, "link.json")
	require.NoError(t, os.Symlink(target, link))

	info, err := Inspect(link, config.DefaultCatalog())
	require.NoError(t, err)
	assert.True(t, info.IsSymlink)
	assert.True(t, info.IsFile)
	assert.Equal(t, "application/json", info.MIMEType)

	require.NoError(t, os.Remove(target))
	_, err = Inspect(link, config.DefaultCatalog())
	assert.True(t, errors.Is(err, domain.ErrPathNotFound))
}

func TestInspectMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Inspect(missing, config.DefaultCatalog())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPathNotFound))
	assert.Equal(t, missing, domain.AsFailure(err).Path)

	_, err = Inspect("  ", config.DefaultCatalog())
	assert.True(t, errors.Is(err, domain.ErrInvalidOption))
}
