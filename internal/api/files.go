package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/service"
)

type SourceFilesOutput struct {
	Body []service.SourceFile
}

type TileFilesOutput struct {
	Body []service.TileFile
}

// RegisterFiles registers data file listings.
func (h *APIHandler) RegisterFiles(api huma.API) {
	huma.Get(api, "/api/v1/files/sources", h.GetSourceFiles, huma.OperationTags("files"))
	huma.Get(api, "/api/v1/files/tiles", h.GetTileFiles, huma.OperationTags("files"))
}

func (h *APIHandler) GetSourceFiles(ctx context.Context, input *struct{}) (*SourceFilesOutput, error) {
	files, err := h.svc.Source.List()
	if err != nil {
		return nil, problem(err)
	}
	if files == nil {
		files = []service.SourceFile{}
	}
	return &SourceFilesOutput{Body: files}, nil
}

func (h *APIHandler) GetTileFiles(ctx context.Context, input *struct{}) (*TileFilesOutput, error) {
	files, err := h.svc.Tile.List()
	if err != nil {
		return nil, problem(err)
	}
	if files == nil {
		files = []service.TileFile{}
	}
	return &TileFilesOutput{Body: files}, nil
}
