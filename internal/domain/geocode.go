package domain

import (
	"context"
	"log/slog"
)

// EnrichLocation records resolved coordinates on loc and, when a geocoder is
// available, the formatted address of that position. City, region and contacts
// are never changed. Geocoding failures leave ResolvedPlace empty.
func EnrichLocation(ctx context.Context, loc LocationContext, pos Coordinates, geocoder Geocoder, logger *slog.Logger) LocationContext {
	loc.Coordinates = &pos
	loc.ResolvedPlace = ""
	if geocoder == nil {
		return loc
	}

	result, err := geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", pos.Latitude,
			"lon", pos.Longitude,
			"error", err,
		)
		return loc
	}
	loc.ResolvedPlace = result.FormattedAddress
	return loc
}

// EnrichHelpRequest attempts to attach coordinates to a help request from its area
// name. Failures are recorded in GeoSource and never reject the request.
func EnrichHelpRequest(ctx context.Context, req HelpRequest, geocoder Geocoder, logger *slog.Logger) HelpRequest {
	if geocoder == nil {
		return req
	}
	if req.Area == "" {
		req.GeoSource = "original"
		return req
	}

	result, err := geocoder.ForwardGeocode(ctx, req.Area, HelpCity)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"help_request_id", req.ID,
			"area", req.Area,
			"error", err,
		)
		req.GeoSource = "failed"
		return req
	}
	if result.Lat == 0 && result.Lon == 0 {
		req.GeoSource = "original"
		return req
	}
	req.Geo = &Coordinates{Latitude: result.Lat, Longitude: result.Lon}
	req.FormattedAddress = result.FormattedAddress
	req.GeoSource = "forward"
	return req
}
