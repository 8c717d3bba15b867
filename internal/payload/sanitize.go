// Package payload normalizes raw hotel info payloads before strict decoding.
//
// Upstream detail payloads (and records converted from the bulk dump) are
// frequently partial: collections arrive as null, images come either as bare
// strings or as objects with varying field names, and CDN URLs carry size
// placeholders. Sanitize rewrites such a payload into the canonical shape and
// Decode then validates it strictly into a domain.DetailRecord.
//
// Every function in this package is pure: inputs are never mutated.
package payload

import (
	"bytes"
	"encoding/json"
)

// Raw is an undecoded JSON object as received from upstream or read from the
// persistent cache.
type Raw map[string]any

// Parse decodes b into a Raw object, keeping numbers exact.
func Parse(b []byte) (Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var r Raw
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	return r, nil
}

// Marshal encodes r back to JSON.
func Marshal(r Raw) ([]byte, error) { return json.Marshal(r) }

// Top-level collections of the data section that must never be null.
var dataLists = []string{
	"room_groups",
	"images",
	"amenity_groups",
	"serp_filters",
	"description_struct",
	"policy_struct",
}

// Sanitize replaces null collections of the data section with their empty
// form and canonicalizes image references. A payload without a data object is
// returned unchanged. Sanitize is idempotent.
func Sanitize(raw Raw) Raw {
	data, ok := asMap(raw["data"])
	if !ok {
		return raw
	}

	d := cloneMap(data)
	for _, k := range dataLists {
		if isNull(d[k]) {
			d[k] = []any{}
		}
	}

	d["images"] = imageList(d["images"])

	if groups, ok := d["amenity_groups"].([]any); ok {
		out := make([]any, len(groups))
		for i, g := range groups {
			gm, ok := asMap(g)
			if !ok {
				out[i] = g
				continue
			}
			gm = cloneMap(gm)
			if isNull(gm["amenities"]) {
				gm["amenities"] = []any{}
			}
			out[i] = gm
		}
		d["amenity_groups"] = out
	}

	if groups, ok := d["room_groups"].([]any); ok {
		out := make([]any, len(groups))
		for i, g := range groups {
			gm, ok := asMap(g)
			if !ok {
				// left for strict validation to reject
				out[i] = g
				continue
			}
			gm = cloneMap(gm)
			gm["images"] = imageList(gm["images"])
			if isNull(gm["room_amenities"]) {
				gm["room_amenities"] = []any{}
			}
			if isNull(gm["rg_ext"]) {
				gm["rg_ext"] = map[string]any{}
			}
			out[i] = gm
		}
		d["room_groups"] = out
	}

	out := make(Raw, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	out["data"] = d
	return out
}

// imageList canonicalizes an image collection; non-list values become empty.
func imageList(v any) []any {
	var list []any
	switch x := v.(type) {
	case []any:
		list = x
	case []string:
		list = make([]any, len(x))
		for i, s := range x {
			list[i] = s
		}
	}
	urls := ImageURLs(list)
	out := make([]any, len(urls))
	for i, u := range urls {
		out[i] = u
	}
	return out
}

// isNull also matches nil slices and maps stored in an interface, which
// encode as JSON null.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []any:
		return x == nil
	case []string:
		return x == nil
	case map[string]any:
		return x == nil
	}
	return false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Raw:
		return m, true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
