package places

import "github.com/rcanales/brewscout/internal/model"

type nearbyResponse struct {
	Results       []nearbyPlace `json:"results"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type nearbyPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// normalize maps one provider record onto the engine's place shape. Missing
// fields stay zero-valued; the filter pipeline decides what that means.
func normalize(raw nearbyPlace) model.Place {
	place := model.Place{
		PlaceID:        raw.PlaceID,
		Name:           raw.Name,
		Address:        raw.Vicinity,
		Lat:            raw.Geometry.Location.Lat,
		Lng:            raw.Geometry.Location.Lng,
		Types:          raw.Types,
		BusinessStatus: model.BusinessStatus(raw.BusinessStatus),
		Rating:         raw.Rating,
		ReviewCount:    raw.UserRatingsTotal,
	}
	if len(raw.Types) > 0 {
		place.PrimaryType = raw.Types[0]
	}
	return place
}
