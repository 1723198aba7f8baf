package editor

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/templates"
	"github.com/joeblew999/plat-mapstyle/internal/visibility"
)

// ToggleHandler renders toggle switches and applies their changes.
type ToggleHandler struct {
	humastar.Handler
	svc *service.MapService
}

func NewToggleHandler(svc *service.MapService, renderer *templates.Renderer) *ToggleHandler {
	return &ToggleHandler{Handler: humastar.Handler{Renderer: renderer}, svc: svc}
}

func (h *ToggleHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/toggles", h.ListToggles, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/toggles/{group}", h.Toggle, huma.OperationTags("editor"))
}

type ToggleSwitchData struct {
	Group string
}

func (h *ToggleHandler) ListToggles(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		groups := h.svc.ToggleGroups()
		items := make([]any, len(groups))
		for i, g := range groups {
			items[i] = ToggleSwitchData{Group: g}
		}
		sse.Patch(h.RenderList("toggle-switch", items, humastar.Empty{Title: "No toggles", Message: "No toggle groups are registered"}), "#toggle-list")
	}), nil
}

type ToggleInput struct {
	Group string `path:"group" doc:"Toggle group"`
	humastar.SignalsInput
}

// Toggle applies the $toggleon signal to a group. Layers the map lacks are
// reported in the warning signal; the others still switch.
func (h *ToggleHandler) Toggle(ctx context.Context, input *ToggleInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	ev := visibility.Event{Group: input.Group, On: signals.Bool("toggleon")}

	return h.Stream(func(sse humastar.SSE) {
		plan, err := h.svc.Toggle(ev)
		if len(plan.Show)+len(plan.Hide) == 0 && err != nil {
			sse.Error(err.Error())
			return
		}
		if err != nil {
			sse.Signals(map[string]any{"warning": strings.ReplaceAll(err.Error(), "\n", "; ")})
		}
		sse.Patch(renderLayerList(h.Handler, h.svc.Layers()), "#layer-list")
	}), nil
}
