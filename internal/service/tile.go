package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-mapstyle/internal/pmtiles"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// TileService lists PMTiles archives under <dataDir>/tiles and turns them
// into vector sources.
type TileService struct {
	tilesDir string
	// baseURL is the public prefix the tiles directory is served under.
	baseURL string
}

// NewTileService creates a new tile service. baseURL is the public URL of
// the tiles directory, e.g. "http://localhost:8086/tiles".
func NewTileService(dataDir, baseURL string) *TileService {
	return &TileService{
		tilesDir: filepath.Join(dataDir, "tiles"),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// List returns the archives whose header could be read.
func (s *TileService) List() ([]TileFile, error) {
	entries, err := os.ReadDir(s.tilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TileFile{}, nil
		}
		return nil, err
	}

	files := []TileFile{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pmtiles" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		h, err := pmtiles.ReadFile(filepath.Join(s.tilesDir, entry.Name()))
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Warn("skipping unreadable archive")
			continue
		}
		files = append(files, TileFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			TileType: h.TileType.String(),
			MinZoom:  int(h.MinZoom),
			MaxZoom:  int(h.MaxZoom),
		})
	}
	return files, nil
}

// Source builds a vector source for the archive, using the header's zoom
// range. Only vector (mvt) archives qualify.
func (s *TileService) Source(name string) (style.Source, error) {
	if name == "" || name != filepath.Base(name) || filepath.Ext(name) != ".pmtiles" {
		return style.Source{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	h, err := pmtiles.ReadFile(filepath.Join(s.tilesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return style.Source{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
		}
		return style.Source{}, err
	}
	if h.TileType != pmtiles.Mvt {
		return style.Source{}, fmt.Errorf("%w: %q holds %s tiles", ErrNotVector, name, h.TileType)
	}
	url := fmt.Sprintf("pmtiles://%s/%s", s.baseURL, name)
	return style.VectorSourceZoom(url, int(h.MinZoom), int(h.MaxZoom)), nil
}

// TilesDir returns the path to the tiles directory.
func (s *TileService) TilesDir() string {
	return s.tilesDir
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
