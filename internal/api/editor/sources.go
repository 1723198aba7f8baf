package editor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/templates"
)

type SourceHandler struct {
	humastar.Handler
	svc   *service.MapService
	files *service.SourceService
	tiles *service.TileService
}

func NewSourceHandler(svc *service.MapService, files *service.SourceService, tiles *service.TileService, renderer *templates.Renderer) *SourceHandler {
	return &SourceHandler{
		Handler: humastar.Handler{Renderer: renderer},
		svc:     svc,
		files:   files,
		tiles:   tiles,
	}
}

func (h *SourceHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/sources", h.ListSources, huma.OperationTags("editor"))
	huma.Get(api, "/api/v1/editor/sources/select", h.ListFilesSelect, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/sources/load", h.Load, huma.OperationTags("editor"))
	huma.Delete(api, "/api/v1/editor/sources/{id}", h.Delete, huma.OperationTags("editor"))
}

func (h *SourceHandler) ListSources(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(renderSourceList(h.Handler, h.svc.Sources()), "#source-list")
		h.patchFileSelect(sse)
	}), nil
}

func (h *SourceHandler) ListFilesSelect(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(h.patchFileSelect), nil
}

// Load turns a data file into a live source. Signals: sourceid, file.
// PMTiles archives become vector sources, everything else is read as GeoJSON.
func (h *SourceHandler) Load(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	id, file := signals.String("sourceid"), signals.String("file")
	if id == "" {
		return nil, huma.Error400BadRequest("Source id is required")
	}
	if file == "" {
		return nil, huma.Error400BadRequest("File is required")
	}

	return h.Stream(func(sse humastar.SSE) {
		var err error
		if strings.EqualFold(filepath.Ext(file), ".pmtiles") {
			src, serr := h.tiles.Source(file)
			if serr == nil {
				serr = h.svc.UpsertSource(id, src)
			}
			err = serr
		} else {
			features, lerr := h.files.Load(file)
			if lerr == nil {
				lerr = h.svc.UpsertGeoJSONSource(id, features)
			}
			err = lerr
		}
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"sourceid": "", "file": "", "success": "Loaded " + file + " as " + id})
		sse.Patch(renderSourceList(h.Handler, h.svc.Sources()), "#source-list")
	}), nil
}

type DeleteSourceInput struct {
	ID string `path:"id" doc:"Source id to delete"`
}

func (h *SourceHandler) Delete(ctx context.Context, input *DeleteSourceInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.svc.RemoveSource(input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Success("Deleted source " + input.ID)
		sse.Patch(renderSourceList(h.Handler, h.svc.Sources()), "#source-list")
		sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
	}), nil
}

func (h *SourceHandler) patchFileSelect(sse humastar.SSE) {
	var options []humastar.SelectOptionData
	if files, err := h.files.List(); err == nil {
		for _, f := range files {
			if f.Loadable {
				options = append(options, humastar.SelectOptionData{Value: f.Name, Label: f.Name + " (" + f.Size + ")"})
			}
		}
	}
	if tiles, err := h.tiles.List(); err == nil {
		for _, t := range tiles {
			if t.TileType == "mvt" {
				options = append(options, humastar.SelectOptionData{Value: t.Name, Label: t.Name + " (" + t.Size + ")"})
			}
		}
	}
	sse.Patch(h.RenderSelect("-- Select a data file --", options), "#file-select")
}

func renderSourceList(h humastar.Handler, sources []service.SourceInfo) string {
	items := make([]any, len(sources))
	for i, s := range sources {
		items[i] = s
	}
	return h.RenderList("source-card", items, humastar.Empty{Title: "No sources", Message: "Load a GeoJSON file or PMTiles archive"})
}
