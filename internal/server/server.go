package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-mapstyle/internal/api"
	"github.com/joeblew999/plat-mapstyle/internal/api/editor"
	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/mapview"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and page templates

	// AccessToken is handed to map clients with the style.
	AccessToken string
	// UniqueKey is the feature property used to drop duplicate features.
	UniqueKey string
	Center    orb.Point
	Zoom      float64

	// DisableDB skips opening DuckDB; SQL endpoints then answer 503.
	DisableDB bool
	Logger    log.FieldLogger
}

// Server is the map style HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	renderer *templates.Renderer
	log      log.FieldLogger
}

// New creates a new server.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-mapstyle API", api.Version)
	humaConfig.Info.Description = "Map style service: typed layer configs compiled into a live style document, with sources, toggles and viewport queries."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	mapService, err := service.NewMapService(service.MapConfig{
		DataDir: cfg.DataDir,
		Engine: engine.Options{
			AccessToken: cfg.AccessToken,
			Name:        "plat-mapstyle",
			Center:      cfg.Center,
			Zoom:        cfg.Zoom,
		},
		View: mapview.Config{UniqueKey: cfg.UniqueKey, Logger: cfg.Logger},
	})
	if err != nil {
		return nil, fmt.Errorf("creating map: %w", err)
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		renderer: loadRenderer(cfg.WebDir, cfg.Logger),
		log:      cfg.Logger,
	}

	// Initialize DuckDB connection
	if !cfg.DisableDB {
		conn, err := db.Open(context.Background(), db.Config{DataDir: cfg.DataDir, DBName: "mapstyle"})
		if err != nil {
			cfg.Logger.WithError(err).Warn("database unavailable, SQL sources disabled")
		} else {
			s.db = conn
		}
	}

	s.services = &api.Services{
		Map:    mapService,
		Source: service.NewSourceService(cfg.DataDir),
		Tile:   service.NewTileService(cfg.DataDir, s.tilesURL()),
		Query:  service.NewQueryService(s.db),
	}

	s.routes()
	return s, nil
}

// loadRenderer prefers fragment templates under webDir, falling back to the
// embedded set.
func loadRenderer(webDir string, logger log.FieldLogger) *templates.Renderer {
	if webDir != "" {
		dir := filepath.Join(webDir, "templates", "fragments")
		if r, err := templates.NewDir(dir); err == nil {
			logger.WithField("dir", dir).Info("loaded fragment templates")
			return r
		}
	}
	return templates.New()
}

func (s *Server) tilesURL() string {
	host := s.config.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s/tiles/", host, s.config.Port)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Services returns the services behind the API.
func (s *Server) Services() *api.Services {
	return s.services
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services, api.Info{DataDir: s.config.DataDir, UniqueKey: s.config.UniqueKey})

	// Register Editor SSE routes using Huma + Datastar SDK
	editor.NewLayerHandler(s.services.Map, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewSourceHandler(s.services.Map, s.services.Source, s.services.Tile, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewToggleHandler(s.services.Map, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewEventHandler(s.services.Map, s.renderer).RegisterRoutes(s.humaAPI)

	tilesDir := filepath.Join(s.config.DataDir, "tiles")
	s.mux.Handle("/tiles/", http.StripPrefix("/tiles/", s.handleTiles(tilesDir)))

	// Static files and pages
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handlePage("viewer.html"))
		s.mux.HandleFunc("/editor", s.handlePage("editor.html"))
	}
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range api.RootLinks() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-mapstyle",
		"status":  "running",
	})
}

func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.config.WebDir, "templates", name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}
}

func (s *Server) handleTiles(tilesDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(tilesDir)).ServeHTTP(w, r)
	})
}
