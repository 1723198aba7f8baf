package api

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tiler"
)

type SourcesOutput struct {
	Body []service.SourceInfo
}

type SourceOutput struct {
	Body style.Source
}

type SourceInfoOutput struct {
	Body service.SourceInfo
}

type GeoJSONSourceInput struct {
	IDInput
	RawBody []byte `contentType:"application/geo+json"`
}

type VectorSourceInput struct {
	IDInput
	Body struct {
		URL     string `json:"url" minLength:"1" doc:"Tile URL template" example:"https://tiles.example.com/{z}/{x}/{y}.pbf"`
		MinZoom int    `json:"minZoom,omitempty" minimum:"0" maximum:"24" doc:"Lowest available zoom"`
		MaxZoom int    `json:"maxZoom,omitempty" minimum:"0" maximum:"24" doc:"Highest available zoom; 0 means 14"`
	}
}

type FileSourceInput struct {
	IDInput
	Body struct {
		File string `json:"file" minLength:"1" doc:"File name under the data dir" example:"tracts.geojson"`
	}
}

type QuerySourceInput struct {
	IDInput
	Body service.FeatureQuery
}

type SourceFeaturesInput struct {
	IDInput
	Body struct {
		SourceLayer string       `json:"sourceLayer,omitempty" doc:"Layer inside a vector tile source"`
		Filter      style.Filter `json:"filter,omitempty" doc:"Filter expression"`
	}
}

type TileInput struct {
	IDInput
	Z uint32 `path:"z" maximum:"22" doc:"Zoom"`
	X uint32 `path:"x" doc:"Column"`
	Y uint32 `path:"y" doc:"Row"`
}

type FeaturesOutput struct {
	Body []geo.Feature
}

// RegisterSources registers live source routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	tags := huma.OperationTags("sources")
	huma.Get(api, "/api/v1/sources", h.GetSources, tags)
	huma.Get(api, "/api/v1/sources/{id}", h.GetSource, tags)
	huma.Put(api, "/api/v1/sources/{id}/geojson", h.PutGeoJSONSource, tags,
		func(o *huma.Operation) {
			o.Summary = "Upsert inline GeoJSON source"
			o.Description = "Accepts a FeatureCollection, a Feature or a bare geometry. Layers drawing from the source stay in place."
		})
	huma.Put(api, "/api/v1/sources/{id}/vector", h.PutVectorSource, tags)
	huma.Put(api, "/api/v1/sources/{id}/file", h.PutFileSource, tags,
		func(o *huma.Operation) { o.Summary = "Load a GeoJSON data file as source" })
	huma.Put(api, "/api/v1/sources/{id}/pmtiles", h.PutPMTilesSource, tags,
		func(o *huma.Operation) { o.Summary = "Serve a PMTiles archive as vector source" })
	huma.Put(api, "/api/v1/sources/{id}/query", h.PutQuerySource, tags,
		func(o *huma.Operation) { o.Summary = "Build a GeoJSON source from a SQL query" })
	huma.Delete(api, "/api/v1/sources/{id}", h.DeleteSource, tags)
	huma.Post(api, "/api/v1/sources/{id}/features", h.SourceFeatures, tags,
		func(o *huma.Operation) { o.Summary = "Unique features of a source" })
	huma.Register(api, huma.Operation{
		OperationID:   "get-source-tile",
		Method:        "GET",
		Path:          "/api/v1/sources/{id}/tiles/{z}/{x}/{y}",
		Summary:       "Vector tile cut from a GeoJSON source",
		Description:   "The tile holds one layer named after the source. An empty tile answers 204.",
		Tags:          []string{"sources"},
		DefaultStatus: 200,
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Mapbox vector tile",
				Content:     map[string]*huma.MediaType{tiler.ContentType: {}},
			},
		},
	}, h.GetSourceTile)
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*SourcesOutput, error) {
	return &SourcesOutput{Body: h.svc.Map.Sources()}, nil
}

func (h *APIHandler) GetSource(ctx context.Context, input *IDInput) (*SourceOutput, error) {
	src, ok := h.svc.Map.Source(input.ID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("source %q not found", input.ID))
	}
	return &SourceOutput{Body: src}, nil
}

func (h *APIHandler) PutGeoJSONSource(ctx context.Context, input *GeoJSONSourceInput) (*SourceInfoOutput, error) {
	features, err := service.DecodeGeoJSON(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return h.upsertFeatures(input.ID, features)
}

func (h *APIHandler) PutVectorSource(ctx context.Context, input *VectorSourceInput) (*SourceInfoOutput, error) {
	src := style.VectorSource(input.Body.URL)
	if input.Body.MaxZoom > 0 {
		if input.Body.MinZoom > input.Body.MaxZoom {
			return nil, huma.Error422UnprocessableEntity("minZoom is above maxZoom")
		}
		src = style.VectorSourceZoom(input.Body.URL, input.Body.MinZoom, input.Body.MaxZoom)
	}
	return h.upsert(input.ID, src)
}

func (h *APIHandler) PutFileSource(ctx context.Context, input *FileSourceInput) (*SourceInfoOutput, error) {
	features, err := h.svc.Source.Load(input.Body.File)
	if err != nil {
		return nil, problem(err)
	}
	return h.upsertFeatures(input.ID, features)
}

func (h *APIHandler) PutPMTilesSource(ctx context.Context, input *FileSourceInput) (*SourceInfoOutput, error) {
	src, err := h.svc.Tile.Source(input.Body.File)
	if err != nil {
		return nil, problem(err)
	}
	return h.upsert(input.ID, src)
}

func (h *APIHandler) PutQuerySource(ctx context.Context, input *QuerySourceInput) (*SourceInfoOutput, error) {
	features, err := h.svc.Query.Features(ctx, input.Body)
	if err != nil {
		return nil, problem(err)
	}
	return h.upsertFeatures(input.ID, features)
}

func (h *APIHandler) DeleteSource(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := h.svc.Map.RemoveSource(input.ID); err != nil {
		return nil, problem(err)
	}
	return message("Source deleted"), nil
}

func (h *APIHandler) SourceFeatures(ctx context.Context, input *SourceFeaturesInput) (*FeaturesOutput, error) {
	if _, ok := h.svc.Map.Source(input.ID); !ok {
		return nil, problem(fmt.Errorf("%w: %q", engine.ErrSourceNotFound, input.ID))
	}
	features, err := h.svc.Map.FeaturesFromSource(input.ID, input.Body.SourceLayer, input.Body.Filter)
	if err != nil {
		return nil, problem(err)
	}
	if features == nil {
		features = []geo.Feature{}
	}
	return &FeaturesOutput{Body: features}, nil
}

func (h *APIHandler) GetSourceTile(ctx context.Context, input *TileInput) (*huma.StreamResponse, error) {
	data, err := h.svc.Map.VectorTile(input.ID, maptile.New(input.X, input.Y, maptile.Zoom(input.Z)))
	if err != nil {
		return nil, problem(err)
	}
	return &huma.StreamResponse{Body: func(hctx huma.Context) {
		if data == nil {
			hctx.SetStatus(204)
			return
		}
		hctx.SetHeader("Content-Type", tiler.ContentType)
		hctx.SetHeader("Cache-Control", "no-cache")
		hctx.SetStatus(200)
		hctx.BodyWriter().Write(data)
	}}, nil
}

func (h *APIHandler) upsertFeatures(id string, features []geo.Feature) (*SourceInfoOutput, error) {
	return h.upsert(id, style.GeoJSONSource(features))
}

func (h *APIHandler) upsert(id string, src style.Source) (*SourceInfoOutput, error) {
	if err := h.svc.Map.UpsertSource(id, src); err != nil {
		return nil, problem(err)
	}
	for _, info := range h.svc.Map.Sources() {
		if info.ID == id {
			return &SourceInfoOutput{Body: info}, nil
		}
	}
	return nil, huma.Error500InternalServerError(fmt.Sprintf("source %q missing after upsert", id))
}
