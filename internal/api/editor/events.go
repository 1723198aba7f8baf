package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/templates"
)

// EventHandler streams style change events to the Datastar UI via SSE.
type EventHandler struct {
	humastar.Handler
	svc *service.MapService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc *service.MapService, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{Handler: humastar.Handler{Renderer: renderer}, svc: svc}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

// Events patches the panels a change touches, then dispatches
// "style-changed" so the map page can reload the style document.
func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		bus := h.svc.Bus()
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				switch ev.Resource {
				case service.ResourceSources:
					sse.Patch(renderSourceList(h.Handler, h.svc.Sources()), "#source-list")
					sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
				case service.ResourceLayers, service.ResourceToggles:
					sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
				}
				sse.DispatchCustomEvent("style-changed", ev)
			}
		}
	}), nil
}
