package imageprovider

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/logger"
)

const (
	testBaseURL    = "http://127.0.0.1:5000"
	testArtworkURL = "https://example.com/artwork/shiny/25.png"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// artworkPNG renders a 4x4 image: a dark 2x2 square on a light, transparent background.
func artworkPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetNRGBA(x, y, color.NRGBA{250, 250, 250, 0})
		}
	}
	for y := 1; y < 3; y++ {
		for x := 1; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{220, 40, 40, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestDeriver(t *testing.T) (*Deriver, *httpmock.MockTransport, string) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)

	staticDir := t.TempDir()
	d, err := NewDeriver(Config{
		StaticDir: staticDir,
		BaseURL:   testBaseURL,
		Timeout:   time.Second,
	}, client, nil, logger.NewDiscardLogger())
	require.NoError(t, err)

	return d, transport, staticDir
}

func decodeFile(t *testing.T, path string) *image.NRGBA {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	require.NoError(t, err)
	return toNRGBA(img)
}

func TestNewDeriverCreatesDirectories(t *testing.T) {
	_, _, staticDir := newTestDeriver(t)

	for _, dir := range []string{"realImages", "silhouettes"} {
		info, err := os.Stat(filepath.Join(staticDir, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNewDeriverFailsOnUnwritableRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewDeriver(Config{StaticDir: file}, nil, nil, logger.NewDiscardLogger())
	require.Error(t, err)
}

func TestEnsureSilhouette(t *testing.T) {
	d, transport, staticDir := newTestDeriver(t)
	transport.RegisterResponder(http.MethodGet, testArtworkURL, httpmock.NewBytesResponder(http.StatusOK, artworkPNG(t)))

	url, err := d.EnsureSilhouette(t.Context(), 25, testArtworkURL)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000/static/silhouettes/25.png", url)

	sil := decodeFile(t, filepath.Join(staticDir, "silhouettes", "25.png"))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, sil.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{255, 255, 255, 0}, sil.NRGBAAt(0, 0))

	real := decodeFile(t, filepath.Join(staticDir, "realImages", "25.png"))
	assert.Equal(t, color.NRGBA{220, 40, 40, 255}, real.NRGBAAt(1, 1), "real image is stored from the same download")

	again, err := d.EnsureSilhouette(t.Context(), 25, testArtworkURL)
	require.NoError(t, err)
	assert.Equal(t, url, again)

	realURL, err := d.EnsureRealImage(t.Context(), 25, testArtworkURL)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000/static/realImages/25.png", realURL)

	assert.Equal(t, 1, transport.GetTotalCallCount(), "derivation is idempotent")
}

func TestEnsureRealImage(t *testing.T) {
	d, transport, staticDir := newTestDeriver(t)
	transport.RegisterResponder(http.MethodGet, testArtworkURL, httpmock.NewBytesResponder(http.StatusOK, artworkPNG(t)))

	url, err := d.EnsureRealImage(t.Context(), 4, testArtworkURL)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000/static/realImages/4.png", url)

	_, err = os.Stat(filepath.Join(staticDir, "silhouettes", "4.png"))
	assert.True(t, os.IsNotExist(err), "real image path does not derive a silhouette")

	_, err = d.EnsureRealImage(t.Context(), 4, testArtworkURL)
	require.NoError(t, err)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestExistingAssetSkipsNetwork(t *testing.T) {
	d, transport, staticDir := newTestDeriver(t)
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "silhouettes", "9.png"), []byte("cached"), 0o600))

	url, err := d.EnsureSilhouette(t.Context(), 9, "https://example.invalid/never-fetched.png")
	require.NoError(t, err)
	assert.Equal(t, d.AssetURL(KindSilhouette, 9), url)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestFetchErrors(t *testing.T) {
	d, transport, staticDir := newTestDeriver(t)
	transport.RegisterResponder(http.MethodGet, "https://example.com/404.png", httpmock.NewStringResponder(http.StatusNotFound, ""))
	transport.RegisterResponder(http.MethodGet, "https://example.com/down.png", httpmock.NewErrorResponder(fmt.Errorf("connection reset")))

	_, err := d.EnsureSilhouette(t.Context(), 1, "https://example.com/404.png")
	require.ErrorIs(t, err, ErrFetch)

	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "download_artwork", ee.GetContext()["operation"])
	assert.Contains(t, ee.GetContext(), "duration_ms")

	_, err = d.EnsureRealImage(t.Context(), 2, "https://example.com/down.png")
	require.ErrorIs(t, err, ErrFetch)

	entries, err := os.ReadDir(filepath.Join(staticDir, "silhouettes"))
	require.NoError(t, err)
	assert.Empty(t, entries, "failed derivations leave no files behind")
}

func TestFetchTimeout(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)

	d, err := NewDeriver(Config{StaticDir: t.TempDir(), BaseURL: testBaseURL, Timeout: 20 * time.Millisecond},
		client, nil, logger.NewDiscardLogger())
	require.NoError(t, err)

	transport.RegisterResponder(http.MethodGet, testArtworkURL,
		httpmock.NewBytesResponder(http.StatusOK, artworkPNG(t)).Delay(200*time.Millisecond))

	_, err = d.EnsureSilhouette(t.Context(), 25, testArtworkURL)
	require.ErrorIs(t, err, ErrFetch)
}

func TestUndecodableArtwork(t *testing.T) {
	d, transport, staticDir := newTestDeriver(t)
	transport.RegisterResponder(http.MethodGet, testArtworkURL, httpmock.NewStringResponder(http.StatusOK, "<html>not an image</html>"))

	_, err := d.EnsureSilhouette(t.Context(), 25, testArtworkURL)
	require.ErrorIs(t, err, ErrProcessing)
	assert.NotErrorIs(t, err, ErrFetch)

	_, statErr := os.Stat(filepath.Join(staticDir, "realImages", "25.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConcurrentDerivationDownloadsOnce(t *testing.T) {
	d, transport, _ := newTestDeriver(t)
	transport.RegisterResponder(http.MethodGet, testArtworkURL,
		httpmock.NewBytesResponder(http.StatusOK, artworkPNG(t)).Delay(50*time.Millisecond))

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			url, err := d.EnsureSilhouette(t.Context(), 25, testArtworkURL)
			assert.NoError(t, err)
			assert.Equal(t, d.AssetURL(KindSilhouette, 25), url)
		})
	}
	wg.Wait()

	assert.Equal(t, 1, transport.GetTotalCallCount())
}
