package api

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/pokeguess/pokeguess/internal/imageprovider"
	"github.com/pokeguess/pokeguess/internal/logger"
)

// assetNamePattern matches derived asset names such as 25.png. Anything
// else, including path separators, is rejected before touching the disk.
var assetNamePattern = regexp.MustCompile(`^[0-9]+\.png$`)

// StaticFileServer serves derived image assets from the static directory.
type StaticFileServer struct {
	root string
	log  logger.Logger
}

// NewStaticFileServer creates a static file server rooted at dir.
func NewStaticFileServer(dir string, log logger.Logger) *StaticFileServer {
	return &StaticFileServer{root: dir, log: log}
}

// RegisterRoutes registers one route per asset kind.
func (sfs *StaticFileServer) RegisterRoutes(e *echo.Echo) {
	for _, kind := range []imageprovider.Kind{imageprovider.KindSilhouette, imageprovider.KindReal} {
		e.GET("/static/"+string(kind)+"/:file", sfs.handler(kind))
	}
}

func (sfs *StaticFileServer) handler(kind imageprovider.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("file")
		if !assetNamePattern.MatchString(name) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return sfs.serveFromDisk(c, filepath.Join(sfs.root, string(kind)), name)
	}
}

// serveFromDisk serves name from dir. Uses os.OpenRoot so the lookup cannot
// escape dir.
func (sfs *StaticFileServer) serveFromDisk(c echo.Context, dir, name string) error {
	root, err := os.OpenRoot(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		sfs.logError("Failed to open asset directory", dir, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open asset directory")
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(name)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		case os.IsPermission(err):
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		default:
			sfs.logError("Failed to open asset", name, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
		}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			sfs.log.Warn("Error closing file", logger.String("path", name), logger.Error(closeErr))
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		sfs.logError("Failed to stat asset", name, err)
		httpErr := echo.NewHTTPError(http.StatusInternalServerError, "Failed to get file info")
		httpErr.Internal = err
		return httpErr
	}

	// Assets never change once written
	c.Response().Header().Set(echo.HeaderContentType, "image/png")
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(c.Response(), c.Request(), name, stat.ModTime(), file)
	return nil
}

func (sfs *StaticFileServer) logError(msg, path string, err error) {
	sfs.log.Error(msg, logger.String("path", path), logger.Error(err))
}
