package api

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-mapstyle/internal/visibility"
)

type CameraBody struct {
	Center [2]float64 `json:"center" doc:"[lng, lat]"`
	Zoom   float64    `json:"zoom"`
	Bounds [4]float64 `json:"bounds" doc:"[west, south, east, north] of the viewport"`
}

type CameraOutput struct {
	Body CameraBody
}

type FlyInput struct {
	Body struct {
		Center [2]float64 `json:"center" doc:"[lng, lat]" example:"[-110.98, 32.23]"`
		Zoom   float64    `json:"zoom,omitempty" minimum:"0" maximum:"24" doc:"Target zoom; 0 means 12"`
	}
}

type FitInput struct {
	Body struct {
		SW [2]float64 `json:"sw" doc:"South-west [lng, lat]"`
		NE [2]float64 `json:"ne" doc:"North-east [lng, lat]"`
	}
}

type TogglesOutput struct {
	Body []string
}

type ToggleInput struct {
	Group string `path:"group" doc:"Toggle group" example:"satellite"`
	Body  struct {
		On bool `json:"on" doc:"New toggle state"`
	}
}

type ToggleBody struct {
	visibility.Plan
	Missing []string `json:"missing,omitempty" doc:"Layers in the plan the map does not have"`
}

type ToggleOutput struct {
	Body ToggleBody
}

// RegisterCamera registers viewport routes.
func (h *APIHandler) RegisterCamera(api huma.API) {
	tags := huma.OperationTags("camera")
	huma.Get(api, "/api/v1/camera", h.GetCamera, tags)
	huma.Post(api, "/api/v1/camera/fly", h.FlyTo, tags)
	huma.Post(api, "/api/v1/camera/fit", h.FitBounds, tags)
}

// RegisterToggles registers toggle group routes.
func (h *APIHandler) RegisterToggles(api huma.API) {
	tags := huma.OperationTags("toggles")
	huma.Get(api, "/api/v1/toggles", h.GetToggles, tags)
	huma.Post(api, "/api/v1/toggles/{group}", h.Toggle, tags,
		func(o *huma.Operation) { o.Summary = "Switch a toggle group on or off" })
}

func (h *APIHandler) camera() *CameraOutput {
	st := h.svc.Map.Style()
	b := h.svc.Map.Bounds()
	out := CameraBody{Zoom: st.Zoom, Bounds: [4]float64{b.Left(), b.Bottom(), b.Right(), b.Top()}}
	if len(st.Center) == 2 {
		out.Center = [2]float64{st.Center[0], st.Center[1]}
	}
	return &CameraOutput{Body: out}
}

func (h *APIHandler) GetCamera(ctx context.Context, input *struct{}) (*CameraOutput, error) {
	return h.camera(), nil
}

func (h *APIHandler) FlyTo(ctx context.Context, input *FlyInput) (*CameraOutput, error) {
	if err := h.svc.Map.FlyTo(orb.Point(input.Body.Center), input.Body.Zoom); err != nil {
		return nil, problem(err)
	}
	return h.camera(), nil
}

func (h *APIHandler) FitBounds(ctx context.Context, input *FitInput) (*CameraOutput, error) {
	if err := h.svc.Map.FitBounds(orb.Point(input.Body.SW), orb.Point(input.Body.NE)); err != nil {
		return nil, problem(err)
	}
	return h.camera(), nil
}

func (h *APIHandler) GetToggles(ctx context.Context, input *struct{}) (*TogglesOutput, error) {
	return &TogglesOutput{Body: h.svc.Map.ToggleGroups()}, nil
}

func (h *APIHandler) Toggle(ctx context.Context, input *ToggleInput) (*ToggleOutput, error) {
	plan, err := h.svc.Map.Toggle(visibility.Event{Group: input.Group, On: input.Body.On})
	if len(plan.Show)+len(plan.Hide) == 0 && err != nil {
		return nil, problem(err)
	}
	body := ToggleBody{Plan: plan}
	for _, ids := range [][]string{plan.Show, plan.Hide} {
		for _, id := range ids {
			if _, ok := h.svc.Map.Layer(id); !ok {
				body.Missing = append(body.Missing, id)
			}
		}
	}
	if err != nil && len(body.Missing) == 0 {
		return nil, huma.Error500InternalServerError(fmt.Sprintf("toggle %q: %v", input.Group, err))
	}
	return &ToggleOutput{Body: body}, nil
}
