package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mapstyle/internal/server"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// Options defines all CLI flags and env vars for the map style server.
// Flags: --host, --port, --data-dir, --web-dir, --access-token, --unique-key, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_ACCESS_TOKEN, ...
type Options struct {
	Host        string  `doc:"Host to bind to" default:"0.0.0.0"`
	Port        int     `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir     string  `doc:"Directory for the style document and data files" default:".data"`
	WebDir      string  `doc:"Path to web/ directory" default:"web"`
	AccessToken string  `doc:"Token handed to map clients"`
	UniqueKey   string  `doc:"Feature property identifying a feature across tiles" default:"geoid10"`
	CenterLng   float64 `doc:"Initial camera longitude" default:"-110.982309"`
	CenterLat   float64 `doc:"Initial camera latitude" default:"32.229371"`
	Zoom        float64 `doc:"Initial camera zoom" default:"11"`
	LogLevel    string  `doc:"Log level (debug, info, warn, error)" default:"info"`
	NoDB        bool    `doc:"Run without DuckDB"`
}

func newServer(opts *Options) (*server.Server, error) {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		WebDir:      opts.WebDir,
		AccessToken: opts.AccessToken,
		UniqueKey:   opts.UniqueKey,
		Center:      orb.Point{opts.CenterLng, opts.CenterLat},
		Zoom:        opts.Zoom,
		DisableDB:   opts.NoDB,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var srv *server.Server

		hooks.OnStart(func() {
			var err error
			if srv, err = newServer(opts); err != nil {
				log.WithError(err).Fatal("creating server")
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			log.WithFields(log.Fields{
				"server":  baseURL,
				"data":    opts.DataDir,
				"docs":    baseURL + "/docs",
				"openapi": baseURL + "/openapi.json",
				"style":   baseURL + "/api/v1/style",
			}).Info("plat-mapstyle server starting")

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.WithError(err).Fatal("server error")
			}
		})

		hooks.OnStop(func() {
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "mapstyle"
	cli.Root().Short = "Typed map layer styles compiled into a live style document"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.NoDB = true
			opts.DataDir = ""
			srv, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// compile subcommand: layer file to layer documents
	compileCmd := &cobra.Command{
		Use:   "compile <layer-file>",
		Short: "Compile a YAML layer file into style layer documents",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := compile(os.Stdout, args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}
	cli.Root().AddCommand(compileCmd)

	cli.Run()
}

func compile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := style.ParseLayerFile(f)
	if err != nil {
		return err
	}
	layers, err := file.CompileAll()
	if err != nil {
		return err
	}
	output, err := json.MarshalIndent(layers, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}
