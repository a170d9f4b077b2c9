// Package imageprovider downloads official artwork and derives the real and
// silhouette PNG assets served to players.
package imageprovider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"time"

	// Register decoders so artwork in other formats still decodes
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/sync/singleflight"

	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

// Kind identifies a derived asset variant. Its value is the directory name
// under the static root and in asset URLs.
type Kind string

const (
	KindReal       Kind = "realImages"
	KindSilhouette Kind = "silhouettes"
)

const (
	// maxArtworkBytes bounds a single artwork download.
	maxArtworkBytes = 16 << 20

	dirPermissions = 0o755
)

// Config holds settings for the Deriver.
type Config struct {
	StaticDir string        // root holding the realImages and silhouettes directories
	BaseURL   string        // public prefix, e.g. http://127.0.0.1:5000
	Timeout   time.Duration // per artwork download
}

// Deriver produces real and silhouette assets on demand. Each (id, kind)
// asset is written at most once; concurrent first requests share one download.
type Deriver struct {
	cfg     Config
	http    *httpclient.Client
	group   singleflight.Group
	metrics *metrics.ImageProviderMetrics
	log     logger.Logger
}

// NewDeriver creates the asset directories and returns a Deriver.
// metrics may be nil.
func NewDeriver(cfg Config, httpClient *httpclient.Client, m *metrics.ImageProviderMetrics, log logger.Logger) (*Deriver, error) {
	if log == nil {
		log = logger.Global().Module("imageprovider")
	}

	for _, kind := range []Kind{KindReal, KindSilhouette} {
		dir := filepath.Join(cfg.StaticDir, string(kind))
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, errors.New(fmt.Errorf("create asset directory %s: %w", dir, err)).
				Component("imageprovider").
				Category(errors.CategoryFileIO).
				Build()
		}
	}

	return &Deriver{
		cfg:     cfg,
		http:    httpClient,
		metrics: m,
		log:     log,
	}, nil
}

// Dir returns the directory holding assets of the given kind.
func (d *Deriver) Dir(kind Kind) string {
	return filepath.Join(d.cfg.StaticDir, string(kind))
}

// AssetPath returns the file path of the (id, kind) asset.
func (d *Deriver) AssetPath(kind Kind, id int) string {
	return filepath.Join(d.Dir(kind), strconv.Itoa(id)+".png")
}

// AssetURL returns the public URL of the (id, kind) asset.
func (d *Deriver) AssetURL(kind Kind, id int) string {
	return fmt.Sprintf("%s/static/%s/%d.png", d.cfg.BaseURL, kind, id)
}

// EnsureRealImage makes sure the full-color asset for id exists and returns its URL.
func (d *Deriver) EnsureRealImage(ctx context.Context, id int, artworkURL string) (string, error) {
	if d.exists(KindReal, id) {
		d.metrics.IncrementAssetHits(string(KindReal))
		return d.AssetURL(KindReal, id), nil
	}

	_, err, _ := d.group.Do(groupKey(KindReal, id), func() (any, error) {
		if d.exists(KindReal, id) {
			return nil, nil
		}

		img, err := d.download(ctx, id, artworkURL)
		if err != nil {
			return nil, err
		}
		return nil, d.write(KindReal, id, toNRGBA(img))
	})
	if err != nil {
		return "", err
	}

	return d.AssetURL(KindReal, id), nil
}

// EnsureSilhouette makes sure the silhouette asset for id exists and returns
// its URL. The real image is stored from the same download when missing.
func (d *Deriver) EnsureSilhouette(ctx context.Context, id int, artworkURL string) (string, error) {
	if d.exists(KindSilhouette, id) {
		d.metrics.IncrementAssetHits(string(KindSilhouette))
		return d.AssetURL(KindSilhouette, id), nil
	}

	_, err, _ := d.group.Do(groupKey(KindSilhouette, id), func() (any, error) {
		if d.exists(KindSilhouette, id) {
			return nil, nil
		}

		img, err := d.download(ctx, id, artworkURL)
		if err != nil {
			return nil, err
		}

		if !d.exists(KindReal, id) {
			if err := d.write(KindReal, id, toNRGBA(img)); err != nil {
				return nil, err
			}
		}

		return nil, d.write(KindSilhouette, id, Silhouette(img))
	})
	if err != nil {
		return "", err
	}

	return d.AssetURL(KindSilhouette, id), nil
}

func groupKey(kind Kind, id int) string {
	return string(kind) + "/" + strconv.Itoa(id)
}

func (d *Deriver) exists(kind Kind, id int) bool {
	_, err := os.Stat(d.AssetPath(kind, id))
	return err == nil
}

// download fetches and decodes the artwork.
func (d *Deriver) download(ctx context.Context, id int, artworkURL string) (image.Image, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	d.metrics.IncrementImageDownloads()

	body, err := d.http.GetBody(ctx, artworkURL, maxArtworkBytes)
	d.metrics.ObserveDownloadDuration(time.Since(start).Seconds())
	if err != nil {
		d.metrics.IncrementDownloadErrors()
		return nil, errors.New(fmt.Errorf("%w: pokemon %d: %w", ErrFetch, id, err)).
			Component("imageprovider").
			Category(errors.CategoryImageFetch).
			NetworkContext(artworkURL, d.cfg.Timeout).
			Timing("download_artwork", time.Since(start)).
			Context("pokemon_id", id).
			Build()
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(fmt.Errorf("%w: pokemon %d: decode: %w", ErrProcessing, id, err)).
			Component("imageprovider").
			Category(errors.CategoryProcessing).
			Context("pokemon_id", id).
			Context("bytes", len(body)).
			Build()
	}

	d.log.Debug("Downloaded artwork",
		logger.Int("pokemon_id", id),
		logger.String("format", format),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", time.Since(start)))

	return img, nil
}

// write encodes img as PNG into a temp file next to the target and renames
// it into place, so readers never observe a partial asset.
func (d *Deriver) write(kind Kind, id int, img image.Image) error {
	target := d.AssetPath(kind, id)

	tmp, err := os.CreateTemp(d.Dir(kind), "."+strconv.Itoa(id)+"-*.png.tmp")
	if err != nil {
		return d.writeError(kind, id, "create temp file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return d.writeError(kind, id, "encode png", err)
	}
	if err := tmp.Close(); err != nil {
		return d.writeError(kind, id, "close temp file", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return d.writeError(kind, id, "rename into place", err)
	}

	d.metrics.IncrementDerivedAssets(string(kind))
	d.log.Info("Asset written",
		logger.Int("pokemon_id", id),
		logger.String("kind", string(kind)),
		logger.String("path", target))

	return nil
}

func (d *Deriver) writeError(kind Kind, id int, op string, err error) error {
	return errors.New(fmt.Errorf("%w: pokemon %d %s: %s: %w", ErrProcessing, id, kind, op, err)).
		Component("imageprovider").
		Category(errors.CategoryFileIO).
		Context("pokemon_id", id).
		Context("operation", op).
		Build()
}
