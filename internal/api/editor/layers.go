// Package editor contains Datastar SSE handlers for the editor UI.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/templates"
)

type LayerHandler struct {
	humastar.Handler
	svc *service.MapService
}

func NewLayerHandler(svc *service.MapService, renderer *templates.Renderer) *LayerHandler {
	return &LayerHandler{Handler: humastar.Handler{Renderer: renderer}, svc: svc}
}

func (h *LayerHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/layers", h.ListLayers, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/layers/{id}/visibility", h.SetVisibility, huma.OperationTags("editor"))
	huma.Delete(api, "/api/v1/editor/layers/{id}", h.DeleteLayer, huma.OperationTags("editor"))
}

func (h *LayerHandler) ListLayers(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
	}), nil
}

type VisibilityInput struct {
	ID string `path:"id" doc:"Layer id"`
	humastar.SignalsInput
}

// SetVisibility shows or hides a layer from the $visible signal.
func (h *LayerHandler) SetVisibility(ctx context.Context, input *VisibilityInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	if !signals.Has("visible") {
		return nil, huma.Error400BadRequest("visible signal is required")
	}
	visible := signals.Bool("visible")

	return h.Stream(func(sse humastar.SSE) {
		fn := h.svc.HideLayer
		if visible {
			fn = h.svc.ShowLayer
		}
		if err := fn(input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
	}), nil
}

type DeleteLayerInput struct {
	ID string `path:"id" doc:"Layer id to delete"`
}

func (h *LayerHandler) DeleteLayer(ctx context.Context, input *DeleteLayerInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.svc.RemoveLayer(input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.RemoveElementByID("layer-" + input.ID)
		sse.Success("Layer deleted")
	}), nil
}

type LayerCardData struct {
	ID          string
	Type        string
	Source      string
	SourceLayer string
	Visible     bool
}

func renderLayerList(h humastar.Handler, layers []style.Layer) string {
	items := make([]any, len(layers))
	// topmost first, the way layer panels list them
	for i, l := range layers {
		items[len(layers)-1-i] = LayerCardData{
			ID:          l.ID,
			Type:        l.Type,
			Source:      l.Source,
			SourceLayer: l.SourceLayer,
			Visible:     l.Visibility() != style.Hidden,
		}
	}
	return h.RenderList("layer-card", items, humastar.Empty{Title: "No layers", Message: "Add a layer through the API to get started"})
}
