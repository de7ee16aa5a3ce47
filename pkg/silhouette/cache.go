package silhouette

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
	"pokedex/pkg/config"
	errs "pokedex/pkg/errors"
	"pokedex/pkg/logger"
	"pokedex/pkg/pokedex"
	"pokedex/pkg/storage"
)

// Downloader fetches raw image bytes
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Cache derives silhouettes from artwork and keeps them on disk, keyed by
// sanitized entity name. Two names that sanitize alike share one file.
type Cache struct {
	store   *storage.Manager
	fetch   Downloader
	baseURL string
	fill    color.NRGBA
	group   singleflight.Group
	logger  logger.Logger
}

// New creates a cache over store
func New(store *storage.Manager, fetch Downloader, baseURL string, fill color.NRGBA, log logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Cache{
		store:   store,
		fetch:   fetch,
		baseURL: baseURL,
		fill:    fill,
		logger:  log.WithField("component", "silhouette"),
	}
}

// NewFromConfig opens the artifact directory and builds a cache from the
// silhouette section. It returns nil, nil when silhouettes are disabled.
func NewFromConfig(cfg config.SilhouetteConfig, fetch Downloader, log logger.Logger) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	fill, err := ParseHexColor(cfg.FillColor)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewManager(cfg.Directory, ".png")
	if err != nil {
		return nil, err
	}
	return New(store, fetch, cfg.BaseURL, fill, log), nil
}

// Dir returns the artifact directory
func (c *Cache) Dir() string {
	return c.store.Dir()
}

// Get returns the reference of the silhouette for name, deriving it from
// imageURL on a miss. ok is false when no silhouette could be produced;
// the reason is logged, never returned.
func (c *Cache) Get(ctx context.Context, imageURL, name string) (string, bool) {
	key := pokedex.SanitizeName(name)
	if key == "" {
		return "", false
	}
	if c.store.Exists(key) {
		return c.reference(key), true
	}

	_, err, _ := c.group.Do(key, func() (interface{}, error) {
		if c.store.Exists(key) {
			return nil, nil
		}
		return nil, c.derive(ctx, imageURL, key)
	})
	if err != nil {
		c.logger.WithError(err).WarnWithFields("Silhouette unavailable", map[string]interface{}{
			"name": name,
			"url":  imageURL,
		})
		return "", false
	}
	return c.reference(key), true
}

func (c *Cache) derive(ctx context.Context, imageURL, key string) error {
	if imageURL == "" {
		return errs.New(errs.ErrorTypeNotFound, 0, "no artwork to derive from")
	}

	data, err := c.fetch.Download(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("download artwork: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errs.New(errs.ErrorTypeDecode, 0, "decode artwork: %v", err)
	}

	sil := Fill(img, c.fill)
	if err := c.store.Save(key, func(tmpPath string) error {
		return gg.SavePNG(tmpPath, sil)
	}); err != nil {
		return fmt.Errorf("save silhouette: %w", err)
	}

	c.logger.DebugWithFields("Silhouette saved", map[string]interface{}{"key": key})
	return nil
}

func (c *Cache) reference(key string) string {
	if c.baseURL == "" {
		return c.store.Path(key)
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + c.store.Filename(key)
}
