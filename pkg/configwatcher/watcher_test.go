package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"questionnaire_backend/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
database:
  host: db.local
  dbname: questionnaire
jwt:
  secret: secret
storage:
  type: minio
questionnaire:
  allow_resubmit: %s
`

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf(baseConfig, "false")), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf(baseConfig, "true")), 0o644))

	select {
	case cfg := <-reloaded:
		assert.True(t, cfg.Questionnaire.AllowResubmit)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
