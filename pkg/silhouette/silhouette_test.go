package silhouette

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pokedex/pkg/config"
	"pokedex/pkg/logger"
	"pokedex/pkg/storage"
)

type fakeDownloader struct {
	data  []byte
	err   error
	calls int32
}

func (f *fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.data, f.err
}

// artwork is a 2x2 image: transparent, half-transparent red, opaque green, opaque blue
func artwork() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 128})
	img.SetNRGBA(0, 1, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newCache(t *testing.T, fetch Downloader, baseURL string) (*Cache, string) {
	dir := t.TempDir()
	store, err := storage.NewManager(dir, ".png")
	require.NoError(t, err)
	return New(store, fetch, baseURL, color.NRGBA{A: 255}, logger.NewTestLogger()), dir
}

func TestFillPreservesAlpha(t *testing.T) {
	fill := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	out := Fill(artwork(), fill)

	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 128}, out.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, out.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, out.NRGBAAt(1, 1))
}

func TestFillTranslatesBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	src.SetNRGBA(5, 5, color.NRGBA{R: 9, A: 255})

	out := Fill(src, color.NRGBA{A: 255})
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, uint8(255), out.NRGBAAt(0, 0).A)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, A: 255}, c)

	c, err = ParseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c)

	_, err = ParseHexColor("#12")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

func TestCacheMissDerivesSilhouette(t *testing.T) {
	fetch := &fakeDownloader{data: encodePNG(t, artwork())}
	cache, dir := newCache(t, fetch, "")

	ref, ok := cache.Get(context.Background(), "https://artwork/25.png", "Mr Mime")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "mr_mime.png"), ref)
	assert.EqualValues(t, 1, fetch.calls)

	f, err := os.Open(ref)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, b, a})
	_, _, _, a = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestCacheHitSkipsNetwork(t *testing.T) {
	fetch := &fakeDownloader{err: errors.New("must not be called")}
	cache, dir := newCache(t, fetch, "")

	existing := filepath.Join(dir, "bulbasaur.png")
	require.NoError(t, os.WriteFile(existing, []byte("previous artifact"), 0644))

	ref, ok := cache.Get(context.Background(), "https://artwork/1.png", "Bulbasaur")
	require.True(t, ok)
	assert.Equal(t, existing, ref)
	assert.EqualValues(t, 0, fetch.calls)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous artifact", string(content))
}

func TestCacheBaseURLReference(t *testing.T) {
	fetch := &fakeDownloader{data: encodePNG(t, artwork())}
	cache, _ := newCache(t, fetch, "https://cdn.example/silhouettes/")

	ref, ok := cache.Get(context.Background(), "https://artwork/25.png", "Pikachu")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/silhouettes/pikachu.png", ref)
}

func TestCacheFailuresReturnNoArtifact(t *testing.T) {
	tests := []struct {
		name     string
		fetch    *fakeDownloader
		imageURL string
	}{
		{"download error", &fakeDownloader{err: errors.New("timeout")}, "https://artwork/1.png"},
		{"undecodable", &fakeDownloader{data: []byte("<html>not an image</html>")}, "https://artwork/1.png"},
		{"no artwork", &fakeDownloader{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, dir := newCache(t, tt.fetch, "")

			ref, ok := cache.Get(context.Background(), tt.imageURL, "Missingno")
			assert.False(t, ok)
			assert.Empty(t, ref)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestCacheConcurrentSameKeyDownloadsOnce(t *testing.T) {
	fetch := &fakeDownloader{data: encodePNG(t, artwork())}
	cache, _ := newCache(t, fetch, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := cache.Get(context.Background(), "https://artwork/6.png", "Charizard")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&fetch.calls))
}

func TestNewFromConfig(t *testing.T) {
	cache, err := NewFromConfig(config.SilhouetteConfig{Enabled: false}, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, cache)

	dir := filepath.Join(t.TempDir(), "shadows")
	cache, err = NewFromConfig(config.SilhouetteConfig{Enabled: true, Directory: dir, FillColor: "#000000"}, &fakeDownloader{}, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, cache.Dir())

	_, err = NewFromConfig(config.SilhouetteConfig{Enabled: true, Directory: dir, FillColor: "black"}, nil, nil)
	assert.Error(t, err)
}
