// Package catalog resolves pokemon ids into records, backed by the public
// catalog API and a write-once in-memory cache.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/antonholmquist/jason"

	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

// maxRecordBytes bounds a single catalog response; a full pokemon document is ~300KB.
const maxRecordBytes = 4 << 20

// Record is the subset of an upstream pokemon document the game needs.
// Records are immutable once fetched.
type Record struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ArtworkURL string `json:"artworkUrl"`
}

// Fetcher retrieves a single record from the upstream catalog.
type Fetcher interface {
	Fetch(ctx context.Context, id int) (Record, error)
}

// ClientConfig holds settings for the upstream catalog client.
type ClientConfig struct {
	BaseURL string        // e.g. https://pokeapi.co/api/v2/pokemon/
	Timeout time.Duration // per request
}

// Client fetches pokemon documents from the catalog API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	timeout time.Duration
	metrics *metrics.CatalogMetrics
	log     logger.Logger
}

// NewClient creates a catalog client. metrics may be nil.
func NewClient(cfg ClientConfig, httpClient *httpclient.Client, m *metrics.CatalogMetrics, log logger.Logger) *Client {
	if log == nil {
		log = logger.Global().Module("catalog")
	}
	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		metrics: m,
		log:     log,
	}
}

// Fetch performs GET {baseURL}{id} and parses the response.
func (c *Client) Fetch(ctx context.Context, id int) (Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + strconv.Itoa(id)
	start := time.Now()

	body, err := c.http.GetBody(ctx, url, maxRecordBytes)
	if err != nil {
		c.metrics.RecordFetch(time.Since(start).Seconds(), err)
		return Record{}, errors.New(fmt.Errorf("fetch pokemon %d: %w", id, err)).
			Component("catalog").
			Category(errors.CategoryNetwork).
			NetworkContext(url, c.timeout).
			Context("pokemon_id", id).
			Build()
	}

	record, err := parseRecord(body)
	c.metrics.RecordFetch(time.Since(start).Seconds(), err)
	if err != nil {
		return Record{}, errors.New(fmt.Errorf("parse pokemon %d: %w", id, err)).
			Component("catalog").
			Category(errors.CategoryProcessing).
			Context("pokemon_id", id).
			Build()
	}

	c.log.Debug("Fetched pokemon record",
		logger.Int("pokemon_id", record.ID),
		logger.String("name", record.Name),
		logger.Duration("elapsed", time.Since(start)))

	return record, nil
}

// parseRecord extracts id, name and the shiny official artwork url.
func parseRecord(body []byte) (Record, error) {
	doc, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return Record{}, fmt.Errorf("decode json: %w", err)
	}

	id, err := doc.GetInt64("id")
	if err != nil {
		return Record{}, fmt.Errorf("field id: %w", err)
	}

	name, err := doc.GetString("name")
	if err != nil {
		return Record{}, fmt.Errorf("field name: %w", err)
	}

	artwork, err := doc.GetString("sprites", "other", "official-artwork", "front_shiny")
	if err != nil {
		return Record{}, fmt.Errorf("field sprites.other.official-artwork.front_shiny: %w", err)
	}
	if artwork == "" {
		return Record{}, fmt.Errorf("pokemon %d has no official artwork", id)
	}

	return Record{ID: int(id), Name: name, ArtworkURL: artwork}, nil
}
