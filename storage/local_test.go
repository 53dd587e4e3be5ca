package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSource_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"case-title":"X"}]`), 0o644))

	t.Run("absolute path", func(t *testing.T) {
		src := NewLocalSource("")
		rc, err := src.Open(context.Background(), path)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, `[{"case-title":"X"}]`, string(data))
	})

	t.Run("relative path under base", func(t *testing.T) {
		src := NewLocalSource(dir)
		rc, err := src.Open(context.Background(), "cases.json")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, `[{"case-title":"X"}]`, string(data))
	})

	t.Run("absolute path ignores base", func(t *testing.T) {
		src := NewLocalSource("/nonexistent/base")
		rc, err := src.Open(context.Background(), path)
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("missing file reports fs.ErrNotExist", func(t *testing.T) {
		src := NewLocalSource(dir)
		_, err := src.Open(context.Background(), "missing.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestNewSource_UnknownType(t *testing.T) {
	_, err := NewSource(SourceConfig{Type: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type: ftp")
}

func TestNewSourceFromEnv(t *testing.T) {
	t.Run("defaults to local", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "")
		src, err := NewSourceFromEnv()
		require.NoError(t, err)
		assert.IsType(t, &LocalSource{}, src)
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "s3")
		t.Setenv("AWS_S3_BUCKET", "")
		_, err := NewSourceFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AWS_S3_BUCKET")
	})
}
