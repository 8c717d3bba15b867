package ratehawk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

type multicompleteRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type regionWire struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Type        string `json:"type"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Multicomplete returns region suggestions for a free-text query. An empty
// query returns no suggestions without calling upstream.
func (c *Client) Multicomplete(ctx context.Context, query, lang string) ([]domain.LocationSuggestion, error) {
	out := []domain.LocationSuggestion{}
	if strings.TrimSpace(query) == "" {
		return out, nil
	}
	_, env, err := c.post(ctx, "multicomplete", pathMulticomplete, multicompleteRequest{Query: query, Language: lang})
	if err != nil {
		return nil, err
	}
	if !env.hasData() {
		return out, nil
	}
	var data struct {
		Regions []regionWire `json:"regions"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &UpstreamError{Op: "multicomplete", Err: fmt.Errorf("decode regions: %w", err)}
	}
	for _, r := range data.Regions {
		name := r.Name
		if name == "" {
			name = r.FullName
		}
		out = append(out, domain.LocationSuggestion{
			ID:          r.ID,
			Name:        name,
			Type:        optional(r.Type),
			Country:     optional(r.Country),
			CountryCode: optional(r.CountryCode),
		})
	}
	return out, nil
}

type dumpRequest struct {
	Inventory string `json:"inventory"`
	Language  string `json:"language"`
}

// DumpURL asks upstream for the download URL of the hotel info dump.
func (c *Client) DumpURL(ctx context.Context, inventory, lang string) (string, error) {
	_, env, err := c.post(ctx, "info_dump", pathInfoDump, dumpRequest{Inventory: inventory, Language: lang})
	if err != nil {
		return "", err
	}
	var data struct {
		URL string `json:"url"`
	}
	if env.hasData() {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", &UpstreamError{Op: "info_dump", Err: fmt.Errorf("decode: %w", err)}
		}
	}
	if data.URL == "" {
		return "", &UpstreamError{Op: "info_dump", Err: fmt.Errorf("no dump url in response")}
	}
	return data.URL, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
