package catalog

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/logger"
)

const testBaseURL = "https://pokeapi.co/api/v2/pokemon/"

// pokemonJSON renders a trimmed upstream document for the given pokemon.
func pokemonJSON(id int, name string) string {
	return fmt.Sprintf(`{
		"id": %d,
		"name": %q,
		"height": 4,
		"sprites": {
			"front_default": "https://example.com/sprites/%[1]d.png",
			"other": {
				"official-artwork": {
					"front_default": "https://example.com/artwork/%[1]d.png",
					"front_shiny": "https://example.com/artwork/shiny/%[1]d.png"
				}
			}
		}
	}`, id, name)
}

// newMockedCache wires a Cache to an httpmock transport serving ids 1..50.
func newMockedCache(t *testing.T) (*Cache, *httpmock.MockTransport) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)

	log := logger.NewDiscardLogger()
	fetcher := NewClient(ClientConfig{BaseURL: testBaseURL}, client, nil, log)
	return NewCache(fetcher, 1, 50, nil, log), transport
}

func registerPokemon(transport *httpmock.MockTransport, id int, name string) {
	transport.RegisterResponder(http.MethodGet, fmt.Sprintf("%s%d", testBaseURL, id),
		httpmock.NewStringResponder(http.StatusOK, pokemonJSON(id, name)))
}
