package api

import (
	"context"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

type ViewFeaturesInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit  int `query:"limit" minimum:"0" maximum:"1000" default:"100" doc:"Page size; 0 returns everything"`
	Body   struct {
		Layers []string     `json:"layers,omitempty" doc:"Layer ids to query; all layers when empty"`
		Filter style.Filter `json:"filter,omitempty" doc:"Filter expression"`
	} `required:"false"`
}

type ViewFeaturesOutput struct {
	Body humastar.PageBody[geo.Feature]
}

// MarkersRequest documents the markers body.
type MarkersRequest struct {
	Coordinates [][2]float64        `json:"coordinates" doc:"[lng, lat] per marker"`
	Properties  []geo.Properties    `json:"properties,omitempty" doc:"Properties per marker, parallel to coordinates"`
	Symbol      *style.SymbolConfig `json:"symbol,omitempty" doc:"Symbol styling; ids are fixed"`
}

type markersPayload struct {
	Coordinates [][2]float64     `json:"coordinates"`
	Properties  []geo.Properties `json:"properties"`
	Symbol      json.RawMessage  `json:"symbol"`
}

type MarkersInput struct {
	RawBody []byte `contentType:"application/json"`
}

// RegisterFeatures registers viewport feature queries and markers.
func (h *APIHandler) RegisterFeatures(api huma.API) {
	huma.Post(api, "/api/v1/features", h.ViewFeatures, huma.OperationTags("features"),
		func(o *huma.Operation) { o.Summary = "Unique features drawn in the viewport" })
	huma.Register(api, huma.Operation{
		OperationID: "put-markers",
		Method:      http.MethodPost,
		Path:        "/api/v1/markers",
		Summary:     "Draw markers from parallel coordinate and property lists",
		Tags:        []string{"features"},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{"application/json": {
				Schema: api.OpenAPI().Components.Schemas.Schema(reflect.TypeFor[MarkersRequest](), true, "MarkersRequest"),
			}},
		},

		SkipValidateBody: true,
	}, h.PutMarkers)
}

func (h *APIHandler) ViewFeatures(ctx context.Context, input *ViewFeaturesInput) (*ViewFeaturesOutput, error) {
	features, err := h.svc.Map.FeaturesWithinView(input.Body.Layers, input.Body.Filter)
	if err != nil {
		return nil, problem(err)
	}
	return &ViewFeaturesOutput{Body: humastar.Paginate(features, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) PutMarkers(ctx context.Context, input *MarkersInput) (*LayerOutput, error) {
	var p markersPayload
	if err := json.Unmarshal(input.RawBody, &p); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	cfg, err := style.DecodeJSON(style.TypeSymbol, p.Symbol)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	points := make([]orb.Point, len(p.Coordinates))
	for i, c := range p.Coordinates {
		points[i] = orb.Point(c)
	}
	l, err := h.svc.Map.AddMarkers(points, p.Properties, cfg.(style.SymbolConfig))
	if err != nil {
		return nil, problem(err)
	}
	return &LayerOutput{Body: LayerBody{l}}, nil
}
