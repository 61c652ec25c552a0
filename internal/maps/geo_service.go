// README: Google Maps wrapper for geocoding, place autocomplete and place details.
package maps

import (
	"context"
	"errors"
	"fmt"
	"log"

	"googlemaps.github.io/maps"

	"yahu/internal/types"
)

// ErrNoResults is returned when the provider has no usable answer for a
// lookup. Provider/network failures are folded into it on purpose: the
// dialogue layer treats both the same way and asks the user to clarify.
var ErrNoResults = errors.New("no results")

const (
	regionBias   = "SY"
	languageBias = "ar"
	// searchRadiusMeters biases autocomplete toward the caller's position.
	searchRadiusMeters = 5000
)

// Prediction is one autocomplete hit.
type Prediction struct {
	Description string
	PlaceID     string
}

// PlaceDetail is the fully resolved form of a prediction.
type PlaceDetail struct {
	Address  string
	Location types.Point
}

// GeoService handles interactions with the Google Maps geocoding and Places APIs.
type GeoService struct {
	client *maps.Client
}

// NewGeoService creates a GeoService with the given API key.
func NewGeoService(apiKey string) (*GeoService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeoService{client: client}, nil
}

// Geocode resolves a free-text address to its best coordinate pair.
func (s *GeoService) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   regionBias,
		Language: languageBias,
	})
	if err != nil {
		log.Printf("maps: geocode %q: %v", address, err)
		return types.Point{}, ErrNoResults
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoResults
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// ReverseGeocode resolves coordinates to the provider's best formatted address.
func (s *GeoService) ReverseGeocode(ctx context.Context, p types.Point) (string, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Region:   regionBias,
		Language: languageBias,
	})
	if err != nil {
		log.Printf("maps: reverse geocode (%f,%f): %v", p.Lat, p.Lng, err)
		return "", ErrNoResults
	}
	if len(results) == 0 {
		return "", ErrNoResults
	}
	return results[0].FormattedAddress, nil
}

// SearchPlaces returns up to limit autocomplete predictions for query, biased
// toward origin. It returns an empty slice, never an error, when nothing
// matches or the provider fails.
func (s *GeoService) SearchPlaces(ctx context.Context, query string, origin types.Point, limit int) []Prediction {
	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:    query,
		Language: languageBias,
		Location: &maps.LatLng{Lat: origin.Lat, Lng: origin.Lng},
		Radius:   searchRadiusMeters,
		Components: map[maps.Component][]string{
			maps.ComponentCountry: {"sy"},
		},
	})
	if err != nil {
		log.Printf("maps: autocomplete %q: %v", query, err)
		return nil
	}

	var out []Prediction
	for _, p := range resp.Predictions {
		out = append(out, Prediction{Description: p.Description, PlaceID: p.PlaceID})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// PlaceDetails resolves a provider place id to a formatted address and coordinates.
func (s *GeoService) PlaceDetails(ctx context.Context, placeID string) (PlaceDetail, error) {
	resp, err := s.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: languageBias,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometryLocation,
		},
	})
	if err != nil {
		log.Printf("maps: place details %s: %v", placeID, err)
		return PlaceDetail{}, ErrNoResults
	}
	if resp.FormattedAddress == "" {
		return PlaceDetail{}, ErrNoResults
	}
	return PlaceDetail{
		Address:  resp.FormattedAddress,
		Location: types.Point{Lat: resp.Geometry.Location.Lat, Lng: resp.Geometry.Location.Lng},
	}, nil
}
