package ratehawk

import (
	"context"
	"net/http"

	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/payload"
)

type hotelInfoRequest struct {
	ID       string `json:"id"`
	Language string `json:"language"`
}

// HotelInfo fetches and strictly decodes one hotel info payload. On a schema
// violation it returns the *payload.ValidationError together with the raw
// payload. A response without data is ErrNotFound.
func (c *Client) HotelInfo(ctx context.Context, id, lang string) (*domain.DetailRecord, payload.Raw, error) {
	raw, err := c.HotelInfoRaw(ctx, id, lang)
	if err != nil {
		return nil, nil, err
	}
	rec, err := payload.Decode(raw)
	if err != nil {
		return nil, raw, err
	}
	return rec, raw, nil
}

// HotelInfoRaw fetches one hotel info payload without decoding it.
func (c *Client) HotelInfoRaw(ctx context.Context, id, lang string) (payload.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.pace(ctx); err != nil {
		return nil, err
	}
	body, env, err := c.post(ctx, "hotel_info", pathHotelInfo, hotelInfoRequest{ID: id, Language: lang})
	if err != nil {
		return nil, err
	}
	if !env.hasData() {
		return nil, classify("hotel_info", http.StatusNotFound, "")
	}
	raw, err := payload.Parse(body)
	if err != nil {
		return nil, &UpstreamError{Op: "hotel_info", Err: err}
	}
	return raw, nil
}
