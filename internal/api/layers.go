package api

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// LayerBody is a compiled layer with its state-dependent actions.
type LayerBody struct {
	style.Layer
}

var (
	showAction   = humastar.ActionDef{Rel: "show", Pattern: "/api/v1/layers/%s/show", Method: http.MethodPost, Title: "Show layer"}
	hideAction   = humastar.ActionDef{Rel: "hide", Pattern: "/api/v1/layers/%s/hide", Method: http.MethodPost, Title: "Hide layer"}
	deleteAction = humastar.ActionDef{Rel: "delete", Pattern: "/api/v1/layers/%s", Method: http.MethodDelete, Title: "Remove layer"}
)

// Actions offers show for hidden layers and hide for visible ones.
func (b LayerBody) Actions() []humastar.Action {
	toggle := hideAction
	if b.Visibility() == style.Hidden {
		toggle = showAction
	}
	return humastar.ActionsFor(b.ID, []humastar.ActionDef{toggle, deleteAction})
}

type LayersOutput struct {
	Body []style.Layer
}

type LayerOutput struct {
	Body LayerBody
}

type PutLayerInput struct {
	Type    string `path:"type" enum:"polygon,line,circle,symbol" doc:"Layer config type"`
	ID      string `path:"id" doc:"Layer id; overrides layerId in the body" example:"tracts"`
	Before  string `query:"before" doc:"Insert below this layer; empty puts it on top"`
	RawBody []byte `contentType:"application/json"`
}

type CompileInput struct {
	Type    string `path:"type" enum:"polygon,line,circle,symbol" doc:"Layer config type"`
	RawBody []byte `contentType:"application/json"`
}

type CompileOutput struct {
	Body style.Layer
}

// RegisterLayers registers layer routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	tags := huma.OperationTags("layers")
	huma.Get(api, "/api/v1/layers", h.GetLayers, tags,
		func(o *huma.Operation) { o.Summary = "Layers in paint order, bottom first" })
	huma.Get(api, "/api/v1/layers/{id}", h.GetLayer, tags)
	huma.Register(api, huma.Operation{
		OperationID: "put-layer",
		Method:      http.MethodPut,
		Path:        "/api/v1/layers/{type}/{id}",
		Summary:     "Upsert layer from a typed config",
		Description: "Fields left out of the config keep their defaults. An existing layer with the same id is replaced.",
		Tags:        []string{"layers"},
		RequestBody: configRequestBody(api),

		// the raw body is checked by style.DecodeJSON
		SkipValidateBody: true,
	}, h.PutLayer)
	huma.Delete(api, "/api/v1/layers/{id}", h.DeleteLayer, tags)
	huma.Post(api, "/api/v1/layers/{id}/show", h.ShowLayer, tags)
	huma.Post(api, "/api/v1/layers/{id}/hide", h.HideLayer, tags)
}

// RegisterCompile registers the stateless compile route.
func (h *APIHandler) RegisterCompile(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "compile-layer",
		Method:      http.MethodPost,
		Path:        "/api/v1/compile/{type}",
		Summary:     "Compile a typed config without touching the map",
		Tags:        []string{"layers"},
		RequestBody: configRequestBody(api),

		SkipValidateBody: true,
	}, h.Compile)
}

// configRequestBody documents the raw config body as one of the variants.
func configRequestBody(api huma.API) *huma.RequestBody {
	reg := api.OpenAPI().Components.Schemas
	variants := []reflect.Type{
		reflect.TypeFor[style.PolygonConfig](),
		reflect.TypeFor[style.LineConfig](),
		reflect.TypeFor[style.CircleConfig](),
		reflect.TypeFor[style.SymbolConfig](),
	}
	schema := &huma.Schema{}
	for _, t := range variants {
		schema.OneOf = append(schema.OneOf, reg.Schema(t, true, t.Name()))
	}
	return &huma.RequestBody{
		Required: true,
		Content: map[string]*huma.MediaType{
			"application/json": {Schema: schema},
		},
	}
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	return &LayersOutput{Body: h.svc.Map.Layers()}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	l, ok := h.svc.Map.Layer(input.ID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("layer %q not found", input.ID))
	}
	return &LayerOutput{Body: LayerBody{l}}, nil
}

func (h *APIHandler) PutLayer(ctx context.Context, input *PutLayerInput) (*LayerOutput, error) {
	t := style.LayerType(input.Type)
	cfg, err := style.DecodeJSON(t, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	cfg = style.WithIDs(cfg, input.ID, cfg.Common().SourceID)
	l, err := h.svc.Map.UpsertLayer(cfg, t, input.Before)
	if err != nil {
		return nil, problem(err)
	}
	return &LayerOutput{Body: LayerBody{l}}, nil
}

func (h *APIHandler) DeleteLayer(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := h.svc.Map.RemoveLayer(input.ID); err != nil {
		return nil, problem(err)
	}
	return message("Layer deleted"), nil
}

func (h *APIHandler) ShowLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	return h.setVisible(input.ID, h.svc.Map.ShowLayer)
}

func (h *APIHandler) HideLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	return h.setVisible(input.ID, h.svc.Map.HideLayer)
}

func (h *APIHandler) setVisible(id string, fn func(string) error) (*LayerOutput, error) {
	if err := fn(id); err != nil {
		return nil, problem(err)
	}
	l, _ := h.svc.Map.Layer(id)
	return &LayerOutput{Body: LayerBody{l}}, nil
}

func (h *APIHandler) Compile(ctx context.Context, input *CompileInput) (*CompileOutput, error) {
	t := style.LayerType(input.Type)
	cfg, err := style.DecodeJSON(t, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	l, err := style.BuildLayerJSON(cfg, t)
	if err != nil {
		return nil, problem(err)
	}
	return &CompileOutput{Body: l}, nil
}
