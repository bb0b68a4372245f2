package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImageResizeDefaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")

	cfg, err := Load(&ImageResizeConfig{})
	require.NoError(t, err)

	assert.Equal(t, "admin-project", cfg.ProjectID)
	assert.Equal(t, "admin-project", cfg.PublicProjectID)
	assert.Equal(t, []int{300, 600, 900, 1200, 1500, 2000}, cfg.HeroWidths)
	assert.Equal(t, []int{300, 600, 900, 1200}, cfg.InlineWidths)
	assert.Equal(t, 4, cfg.UploadConcurrency)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, 50000000, cfg.MaxPixels)
}

func TestLoadRequiresProjectID(t *testing.T) {
	t.Setenv("PROJECT_ID", "")

	_, err := Load(&ProjectConfig{})
	assert.Error(t, err)
}

func TestLoadKeepsExplicitPublicProject(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")
	t.Setenv("PUBLIC_PROJECT_ID", "public-project")

	cfg, err := Load(&ProjectConfig{})
	require.NoError(t, err)
	assert.Equal(t, "public-project", cfg.PublicProjectID)
}

func TestLoadRejectsBadJPEGQuality(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")
	t.Setenv("JPEG_QUALITY", "0")

	_, err := Load(&ImageResizeConfig{})
	assert.ErrorContains(t, err, "JPEG_QUALITY")
}

func TestLoadImportConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")
	t.Setenv("IMPORT_MESSAGE_BATCH_SIZE", "250")

	cfg, err := Load(&ImportConfig{})
	require.NoError(t, err)
	assert.Equal(t, "parse-public-user-import", cfg.ParseTopic)
	assert.Equal(t, "import-public-users-to-db", cfg.WriteTopic)
	assert.Equal(t, 250, cfg.MessageBatchSize)
}

func TestLoadStorageCleanupRequiresBucket(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")
	t.Setenv("IMAGES_BUCKET", "")

	_, err := Load(&StorageCleanupConfig{})
	assert.Error(t, err)
}

func TestLoadCallableConfig(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com,https://localhost:4200")
	t.Setenv("APP_CHECK_REQUIRED", "false")

	cfg, err := Load(&CallableConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://admin.example.com", "https://localhost:4200"}, cfg.AllowedOrigins)
	assert.False(t, cfg.AppCheckRequired)
}

func TestLoadRejectsNonPositivePixelLimit(t *testing.T) {
	t.Setenv("PROJECT_ID", "admin-project")
	t.Setenv("IMAGE_MAX_PIXELS", "0")

	_, err := Load(&ImageResizeConfig{})
	assert.Error(t, err)
}
