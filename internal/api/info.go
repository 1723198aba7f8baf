package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Info is the static part of /api/v1/info.
type Info struct {
	DataDir   string
	UniqueKey string
}

type InfoHandler struct {
	info Info
	svc  *Services
}

func NewInfoHandler(info Info, svc *Services) *InfoHandler {
	return &InfoHandler{info: info, svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name        string   `json:"name" doc:"Service name"`
	Version     string   `json:"version" doc:"Service version"`
	DataDir     string   `json:"data_dir" doc:"Data directory path"`
	DB          bool     `json:"db" doc:"Whether database is available"`
	AccessToken string   `json:"access_token,omitempty" doc:"Token map clients pass to the tile provider"`
	UniqueKey   string   `json:"unique_key" doc:"Feature property used to drop duplicate features"`
	Features    []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"style", "geojson", "pmtiles", "toggles", "markers"}
	db := h.svc.Query.Available()
	if db {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:        "plat-mapstyle",
		Version:     Version,
		DataDir:     h.info.DataDir,
		DB:          db,
		AccessToken: h.svc.Map.AccessToken(),
		UniqueKey:   h.info.UniqueKey,
		Features:    features,
	}}, nil
}
