package game

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pokeguess/pokeguess/internal/catalog"
	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/imageprovider"
	"github.com/pokeguess/pokeguess/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const scenarioCatalogURL = "https://pokeapi.co/api/v2/pokemon/"

func scenarioPokemon(id int, name string) string {
	return fmt.Sprintf(`{"id": %d, "name": %q, "sprites": {"other": {"official-artwork": {
		"front_shiny": "https://example.com/artwork/shiny/%[1]d.png"}}}}`, id, name)
}

func scenarioPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 220, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// TestScenarioPikachu runs the real catalog cache and image deriver against
// a mocked upstream.
func TestScenarioPikachu(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)

	transport.RegisterResponder(http.MethodGet, scenarioCatalogURL+"25",
		httpmock.NewStringResponder(http.StatusOK, scenarioPokemon(25, "pikachu")))
	transport.RegisterResponder(http.MethodGet, "https://example.com/artwork/shiny/25.png",
		httpmock.NewBytesResponder(http.StatusOK, scenarioPNG(t)))

	log := logger.NewDiscardLogger()
	cache := catalog.NewCache(
		catalog.NewClient(catalog.ClientConfig{BaseURL: scenarioCatalogURL, Timeout: time.Second}, client, nil, log),
		1, 50, nil, log)

	staticDir := t.TempDir()
	deriver, err := imageprovider.NewDeriver(imageprovider.Config{
		StaticDir: staticDir,
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   time.Second,
	}, client, nil, log)
	require.NoError(t, err)

	svc := newTestService(Config{}, cache, deriver, nil, nil)

	_, err = cache.Resolve(t.Context(), ptr(0))
	require.ErrorIs(t, err, catalog.ErrOutOfRange)

	_, err = cache.Resolve(t.Context(), nil)
	require.ErrorIs(t, err, catalog.ErrMissingID)
	assert.Zero(t, transport.GetTotalCallCount())

	record, err := cache.Resolve(t.Context(), ptr(25))
	require.NoError(t, err)
	assert.Equal(t, "pikachu", record.Name)
	assert.Equal(t, "https://example.com/artwork/shiny/25.png", record.ArtworkURL)

	result, err := svc.CheckGuess(t.Context(), GuessRequest{ID: ptr(25), GuessedName: ptr("fearow")})
	require.NoError(t, err)
	assert.Equal(t, GuessResult{
		CorrectName:  "pikachu",
		FullImageURL: "http://127.0.0.1:5000/static/realImages/25.png",
		GuessCorrect: false,
	}, result)

	_, err = os.Stat(filepath.Join(staticDir, "realImages", "25.png"))
	require.NoError(t, err)

	result, err = svc.CheckGuess(t.Context(), GuessRequest{ID: ptr(25), GuessedName: ptr("PIKACHU")})
	require.NoError(t, err)
	assert.True(t, result.GuessCorrect)

	// one record fetch and one artwork download
	assert.Equal(t, 2, transport.GetTotalCallCount())
}
