package dump

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tbourn/go-hotel-search/internal/payload"
)

// Defaults for fields a dump record may omit.
const (
	defaultCheckIn    = "15:00:00"
	defaultCheckOut   = "11:00:00"
	defaultKind       = "hotel"
	defaultRegionType = "City"
)

// ToPayload converts one dump record into a hotel info payload shaped like a
// live detail response. Missing fields get neutral defaults; the result still
// needs payload.Sanitize and payload.Decode before it is trusted.
func ToPayload(h map[string]any) payload.Raw {
	region, _ := h["region"].(map[string]any)
	if region == nil {
		region = map[string]any{}
	}

	data := map[string]any{
		"id":                 recordID(h),
		"name":               str(h["name"]),
		"kind":               orDefault(str(h["kind"]), defaultKind),
		"address":            str(h["address"]),
		"postal_code":        h["postal_code"],
		"email":              h["email"],
		"phone":              h["phone"],
		"latitude":           num(h["latitude"]),
		"longitude":          num(h["longitude"]),
		"star_rating":        int(num(h["star_rating"])),
		"check_in_time":      orDefault(str(h["check_in_time"]), defaultCheckIn),
		"check_out_time":     orDefault(str(h["check_out_time"]), defaultCheckOut),
		"is_closed":          truthy(h["is_closed"]),
		"images":             list(h["images"]),
		"description_struct": list(h["description_struct"]),
		"policy_struct":      list(h["policy_struct"]),
		"serp_filters":       list(h["serp_filters"]),
		"amenity_groups":     amenityGroups(h["amenity_groups"]),
		"room_groups":        roomGroups(h["room_groups"]),
		"region": map[string]any{
			"id":           int(num(region["id"])),
			"name":         orDefault(str(region["name"]), str(h["city"])),
			"country_code": orDefault(str(region["country_code"]), str(h["country_code"])),
			"type":         orDefault(str(region["type"]), defaultRegionType),
			"iata":         str(region["iata"]),
		},
	}
	if mp, ok := h["metapolicy_struct"].(map[string]any); ok {
		data["metapolicy_struct"] = mp
	}
	return payload.Raw{"status": "ok", "error": nil, "data": data}
}

// recordID prefers id, then slug, then the numeric hid.
func recordID(h map[string]any) string {
	if s := str(h["id"]); s != "" {
		return s
	}
	if s := str(h["slug"]); s != "" {
		return s
	}
	switch v := h["hid"].(type) {
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

// amenityGroups accepts a list or a single object (seen in older dumps).
func amenityGroups(v any) []any {
	var groups []any
	switch x := v.(type) {
	case []any:
		groups = x
	case map[string]any:
		groups = []any{x}
	}
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"group_name": gm["group_name"],
			"amenities":  list(gm["amenities"]),
		})
	}
	return out
}

func roomGroups(v any) []any {
	groups, _ := v.([]any)
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		ext, _ := gm["rg_ext"].(map[string]any)
		if ext == nil {
			ext = map[string]any{}
		}
		out = append(out, map[string]any{
			"room_group_id":  gm["room_group_id"],
			"name":           str(gm["name"]),
			"images":         list(gm["images"]),
			"room_amenities": list(gm["room_amenities"]),
			"rg_ext":         ext,
		})
	}
	return out
}

func list(v any) []any {
	if l, ok := v.([]any); ok && l != nil {
		return l
	}
	return []any{}
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	return ""
}

func num(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		f, _ := x.Float64()
		return f
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

func truthy(v any) bool {
	b, _ := v.(bool)
	return b
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
