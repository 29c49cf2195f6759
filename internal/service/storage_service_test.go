package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quiz_admin_backend/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLocalBankSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	require.NoError(t, os.WriteFile(path, []byte("Id,Question\n"), 0o644))

	data, err := LocalBankSource{}.Fetch(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Id,Question\n", string(data))

	_, err = LocalBankSource{}.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestNewBankSource(t *testing.T) {
	src, err := NewBankSource(&config.Config{Storage: config.StorageConfig{Type: "local"}})
	require.NoError(t, err)
	require.IsType(t, LocalBankSource{}, src)

	// 未配置时默认本地
	src, err = NewBankSource(&config.Config{})
	require.NoError(t, err)
	require.IsType(t, LocalBankSource{}, src)

	_, err = NewBankSource(&config.Config{Storage: config.StorageConfig{Type: "ftp"}})
	require.Error(t, err)
}
