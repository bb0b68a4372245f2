package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Project holds the identifiers every function needs.
type Project struct {
	ProjectID string `env:"PROJECT_ID,required"`
	// PublicProjectID is the Firebase project of the public site. Subscribers live there.
	PublicProjectID string `env:"PUBLIC_PROJECT_ID"`
}

func (p *Project) validateProject() error {
	if p.ProjectID == "" {
		return errors.New("PROJECT_ID environment variable must be set")
	}
	return nil
}

func (p *Project) applyDefaults() {
	if p.PublicProjectID == "" {
		p.PublicProjectID = p.ProjectID
	}
}

// ImageResizeConfig holds configuration for the image resizer.
type ImageResizeConfig struct {
	Project
	HeroWidths        []int  `env:"HERO_IMAGE_WIDTHS" envDefault:"300,600,900,1200,1500,2000"`
	InlineWidths      []int  `env:"INLINE_IMAGE_WIDTHS" envDefault:"300,600,900,1200"`
	CacheControl      string `env:"IMAGE_CACHE_CONTROL" envDefault:"public, max-age=31536000"`
	UploadConcurrency int    `env:"IMAGE_UPLOAD_CONCURRENCY" envDefault:"4"`
	JPEGQuality       int    `env:"JPEG_QUALITY" envDefault:"80"`
	// MaxPixels bounds width*height of a source before it is decoded.
	MaxPixels int `env:"IMAGE_MAX_PIXELS" envDefault:"50000000"`
}

func (c *ImageResizeConfig) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if len(c.HeroWidths) == 0 || len(c.InlineWidths) == 0 {
		return errors.New("HERO_IMAGE_WIDTHS and INLINE_IMAGE_WIDTHS must not be empty")
	}
	for _, w := range append(append([]int{}, c.HeroWidths...), c.InlineWidths...) {
		if w <= 0 {
			return fmt.Errorf("image widths must be positive, got %d", w)
		}
	}
	if c.UploadConcurrency <= 0 {
		c.UploadConcurrency = 4
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("IMAGE_MAX_PIXELS must be positive, got %d", c.MaxPixels)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", c.JPEGQuality)
	}
	return nil
}

// StorageCleanupConfig is shared by the post and product cascades.
type StorageCleanupConfig struct {
	Project
	ImagesBucket string `env:"IMAGES_BUCKET,required"`
}

func (c *StorageCleanupConfig) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if c.ImagesBucket == "" {
		return errors.New("IMAGES_BUCKET must be set")
	}
	return nil
}

// ImportConfig holds configuration for the three import functions.
type ImportConfig struct {
	Project
	ImportBucket     string `env:"IMPORT_BUCKET"`
	ParseTopic       string `env:"IMPORT_PARSE_TOPIC" envDefault:"parse-public-user-import"`
	WriteTopic       string `env:"IMPORT_WRITE_TOPIC" envDefault:"import-public-users-to-db"`
	MessageBatchSize int    `env:"IMPORT_MESSAGE_BATCH_SIZE" envDefault:"1000"`
}

func (c *ImportConfig) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if c.ParseTopic == "" || c.WriteTopic == "" {
		return errors.New("IMPORT_PARSE_TOPIC and IMPORT_WRITE_TOPIC must be set")
	}
	if c.MessageBatchSize <= 0 {
		return fmt.Errorf("IMPORT_MESSAGE_BATCH_SIZE must be positive, got %d", c.MessageBatchSize)
	}
	return nil
}

// CallableConfig controls the HTTPS callable wrapper.
type CallableConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	AppCheckRequired bool     `env:"APP_CHECK_REQUIRED" envDefault:"true"`
}

func (c *CallableConfig) Validate() error { return nil }

// ProjectConfig is used by functions that need nothing beyond the project ids.
type ProjectConfig struct {
	Project
}

func (c *ProjectConfig) Validate() error { return c.validateProject() }

type validator interface {
	Validate() error
}

type defaulter interface {
	applyDefaults()
}

// Load parses the environment into cfg, fills derived defaults and validates it.
func Load[T validator](cfg T) (T, error) {
	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if d, ok := any(cfg).(defaulter); ok {
		d.applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
