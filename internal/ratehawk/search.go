package ratehawk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

const dateLayout = "2006-01-02"

type guestsGroup struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

type regionSearchRequest struct {
	CheckIn     string        `json:"checkin"`
	CheckOut    string        `json:"checkout"`
	Residency   string        `json:"residency,omitempty"`
	Language    string        `json:"language,omitempty"`
	Guests      []guestsGroup `json:"guests"`
	RegionID    int           `json:"region_id"`
	Currency    string        `json:"currency,omitempty"`
	HotelsLimit int           `json:"hotels_limit,omitempty"`
}

type regionSearchData struct {
	Hotels      []domain.SearchHit `json:"hotels"`
	TotalHotels *int               `json:"total_hotels"`
}

// SearchRegion runs a region SERP search. Hits keep upstream order. A
// response without data yields an empty result.
func (c *Client) SearchRegion(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	children := req.Children
	if children == nil {
		children = []int{}
	}
	body := regionSearchRequest{
		CheckIn:     req.CheckIn.Format(dateLayout),
		CheckOut:    req.CheckOut.Format(dateLayout),
		Residency:   req.Residency,
		Language:    req.Language,
		Guests:      []guestsGroup{{Adults: req.Adults, Children: children}},
		RegionID:    req.RegionID,
		Currency:    req.Currency,
		HotelsLimit: req.HotelsLimit,
	}

	_, env, err := c.post(ctx, "search_region", pathSearchRegion, body)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if !env.hasData() {
		zero := 0
		return domain.SearchResult{Hits: []domain.SearchHit{}, Total: &zero}, nil
	}

	var data regionSearchData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return domain.SearchResult{}, &UpstreamError{Op: "search_region", Err: fmt.Errorf("decode hotels: %w", err)}
	}
	if data.Hotels == nil {
		data.Hotels = []domain.SearchHit{}
	}
	return domain.SearchResult{Hits: data.Hotels, Total: data.TotalHotels}, nil
}
