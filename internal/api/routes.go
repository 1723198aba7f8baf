// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Map    *service.MapService
	Source *service.SourceService
	Tile   *service.TileService
	Query  *service.QueryService
}

// RegisterRoutes registers every REST handler.
func RegisterRoutes(api huma.API, svc *Services, info Info) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(info, svc).RegisterRoutes(api)
	NewDBHandler(svc.Query).RegisterRoutes(api)
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Resource id" example:"tracts"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageBody
}

func message(msg string) *MessageOutput {
	return &MessageOutput{Body: MessageBody{Message: msg}}
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

type StyleOutput struct {
	Body style.Style
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers the health check.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStyle registers the style document route.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"),
		func(o *huma.Operation) { o.Summary = "Live style document" })
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*StyleOutput, error) {
	return &StyleOutput{Body: h.svc.Map.Style()}, nil
}
