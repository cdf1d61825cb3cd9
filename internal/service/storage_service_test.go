package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"questionnaire_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageProvider_Upload(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir})

	body := "submitted_at,questionnaire\n"
	url, err := svc.Upload(context.Background(), "exports/user-1/a.csv", strings.NewReader(body), int64(len(body)), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/exports/user-1/a.csv", url)

	got, err := os.ReadFile(filepath.Join(dir, "exports", "user-1", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestNewStorageService_Providers(t *testing.T) {
	minioSvc := NewStorageService(&config.StorageConfig{
		Type:          "minio",
		MinioEndpoint: "localhost:9000",
		MinioBucket:   "exports",
	})
	_, ok := minioSvc.Provider.(*MinioStorageProvider)
	require.True(t, ok)
	assert.Equal(t, "/exports/a.csv", minioSvc.GetURL("a.csv"))

	// 未知类型退回本地
	local := NewStorageService(&config.StorageConfig{Type: "unknown", LocalPath: t.TempDir()})
	_, ok = local.Provider.(*LocalStorageProvider)
	assert.True(t, ok)
}
