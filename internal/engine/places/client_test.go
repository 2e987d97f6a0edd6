package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcanales/brewscout/internal/model"
)

func servePayload(t *testing.T, payload string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func TestSearchNormalizesResults(t *testing.T) {
	c := servePayload(t, `{
		"status": "OK",
		"results": [{
			"place_id": "abc123",
			"name": "Dark Horse Coffee",
			"vicinity": "811 25th St, San Diego",
			"types": ["cafe", "food", "point_of_interest"],
			"business_status": "OPERATIONAL",
			"rating": 4.6,
			"user_ratings_total": 812,
			"geometry": {"location": {"lat": 32.7157, "lng": -117.1611}}
		}]
	}`)

	res, err := c.Search(context.Background(), 32.7, -117.1, 1500, "coffee")
	require.NoError(t, err)
	require.Len(t, res.Places, 1)
	assert.Equal(t, 1, res.APICallsUsed)
	assert.False(t, res.PossiblyTruncated)

	p := res.Places[0]
	assert.Equal(t, "abc123", p.PlaceID)
	assert.Equal(t, "Dark Horse Coffee", p.Name)
	assert.Equal(t, "811 25th St, San Diego", p.Address)
	assert.Equal(t, "cafe", p.PrimaryType)
	assert.Equal(t, model.StatusOperational, p.BusinessStatus)
	assert.InDelta(t, 32.7157, p.Lat, 1e-9)
	assert.Equal(t, 812, p.ReviewCount)
}

func TestSearchPartialRecordStaysZeroValued(t *testing.T) {
	c := servePayload(t, `{
		"status": "OK",
		"results": [{"name": "Mystery Cart"}]
	}`)

	res, err := c.Search(context.Background(), 32.7, -117.1, 1500, "coffee")
	require.NoError(t, err)
	require.Len(t, res.Places, 1)

	p := res.Places[0]
	assert.Empty(t, p.PlaceID)
	assert.Empty(t, p.PrimaryType)
	assert.Equal(t, model.StatusUnknown, p.BusinessStatus)
	assert.False(t, p.HasCoordinates())
}

func TestSearchFullPageMarksTruncated(t *testing.T) {
	var results string
	for i := range pageSize {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{"place_id": "p%d", "name": "Shop %d",
			"geometry": {"location": {"lat": 32.7, "lng": -117.1}}}`, i, i)
	}
	c := servePayload(t, `{"status": "OK", "results": [`+results+`]}`)

	res, err := c.Search(context.Background(), 32.7, -117.1, 1500, "coffee")
	require.NoError(t, err)
	assert.Len(t, res.Places, pageSize)
	assert.True(t, res.PossiblyTruncated)
}

func TestSearchZeroResults(t *testing.T) {
	c := servePayload(t, `{"status": "ZERO_RESULTS", "results": []}`)

	res, err := c.Search(context.Background(), 32.7, -117.1, 1500, "coffee")
	require.NoError(t, err)
	assert.Empty(t, res.Places)
	assert.Equal(t, 1, res.APICallsUsed)
}

func TestSearchDeniedIsAnError(t *testing.T) {
	c := servePayload(t, `{"status": "REQUEST_DENIED", "error_message": "key invalid"}`)

	_, err := c.Search(context.Background(), 32.7, -117.1, 1500, "coffee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
