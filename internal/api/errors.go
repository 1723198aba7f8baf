package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/engine"
	"github.com/joeblew999/plat-mapstyle/internal/geo"
	"github.com/joeblew999/plat-mapstyle/internal/mapview"
	"github.com/joeblew999/plat-mapstyle/internal/pmtiles"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tiler"
)

var notFound = []error{
	engine.ErrLayerNotFound,
	engine.ErrSourceNotFound,
	mapview.ErrMissingLayer,
	mapview.ErrUnknownGroup,
	service.ErrFileNotFound,
}

var unprocessable = []error{
	style.ErrUnrecognizedLayerType,
	style.ErrLayerTypeMismatch,
	style.ErrMissingID,
	style.ErrInvalidConfig,
	mapview.ErrSourceLayerOnGeoJSON,
	geo.ErrInputLengthMismatch,
	service.ErrInvalidName,
	service.ErrNotLoadable,
	service.ErrInvalidGeoJSON,
	service.ErrNotVector,
	service.ErrNotGeoJSON,
	service.ErrMissingColumn,
	pmtiles.ErrShortHeader,
	pmtiles.ErrNotPMTiles,
	pmtiles.ErrVersion,
	tiler.ErrTileOutOfRange,
}

// problem maps service errors to Huma status errors.
func problem(err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	switch {
	case isAny(err, notFound):
		return huma.Error404NotFound(err.Error())
	case isAny(err, unprocessable):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, service.ErrQuery):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, service.ErrNoDatabase):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
