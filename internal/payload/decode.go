package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// Problem is a single schema violation at a JSON field path.
type Problem struct {
	Field   string
	Message string
}

// ValidationError reports that a payload does not satisfy the hotel info
// schema. Live enrichment treats it as an upstream failure; the bulk importer
// skips the record.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return "invalid hotel info payload: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Problems = append(e.Problems, Problem{Field: field, Message: msg})
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Wire shapes. Collections are pointers so that null and missing can be told
// apart from empty during validation.
type infoEnvelope struct {
	Data *infoData `json:"data"`
}

type infoData struct {
	ID                *string                     `json:"id"`
	Name              string                      `json:"name"`
	Kind              string                      `json:"kind"`
	Address           string                      `json:"address"`
	PostalCode        *string                     `json:"postal_code"`
	Email             *string                     `json:"email"`
	Phone             *string                     `json:"phone"`
	Latitude          float64                     `json:"latitude"`
	Longitude         float64                     `json:"longitude"`
	StarRating        int                         `json:"star_rating"`
	CheckInTime       *string                     `json:"check_in_time"`
	CheckOutTime      *string                     `json:"check_out_time"`
	IsClosed          bool                        `json:"is_closed"`
	Region            *domain.Region              `json:"region"`
	AmenityGroups     *[]amenityGroupWire         `json:"amenity_groups"`
	Images            *[]string                   `json:"images"`
	DescriptionStruct []domain.DescriptionSection `json:"description_struct"`
	RoomGroups        *[]roomGroupWire            `json:"room_groups"`
	SerpFilters       *[]string                   `json:"serp_filters"`
}

type amenityGroupWire struct {
	GroupName *string   `json:"group_name"`
	Amenities *[]string `json:"amenities"`
}

type roomGroupWire struct {
	RoomGroupID   *int            `json:"room_group_id"`
	Name          string          `json:"name"`
	Images        *[]string       `json:"images"`
	RoomAmenities *[]string       `json:"room_amenities"`
	RgExt         *map[string]any `json:"rg_ext"`
}

// Decode strictly validates a payload and converts its data section into a
// DetailRecord. It does not sanitize; callers that accept partial payloads
// run Sanitize first.
func Decode(raw Raw) (*domain.DetailRecord, error) {
	b, err := Marshal(raw)
	if err != nil {
		return nil, &ValidationError{Problems: []Problem{{Field: "$", Message: err.Error()}}}
	}
	return DecodeBytes(b)
}

// DecodeBytes is Decode for an encoded payload.
func DecodeBytes(b []byte) (*domain.DetailRecord, error) {
	var env infoEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		ve := &ValidationError{}
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			ve.add(te.Field, fmt.Sprintf("expected %s, got %s", te.Type, te.Value))
		} else {
			ve.add("$", err.Error())
		}
		return nil, ve
	}

	ve := &ValidationError{}
	d := env.Data
	if d == nil {
		ve.add("data", "missing")
		return nil, ve
	}
	if d.ID == nil || strings.TrimSpace(*d.ID) == "" {
		ve.add("data.id", "required")
	}
	if d.Images == nil {
		ve.add("data.images", "must not be null")
	}
	if d.AmenityGroups == nil {
		ve.add("data.amenity_groups", "must not be null")
	} else {
		for i, g := range *d.AmenityGroups {
			if g.Amenities == nil {
				ve.add(fmt.Sprintf("data.amenity_groups[%d].amenities", i), "must not be null")
			}
		}
	}
	if d.SerpFilters == nil {
		ve.add("data.serp_filters", "must not be null")
	}
	if d.RoomGroups == nil {
		ve.add("data.room_groups", "must not be null")
	} else {
		for i, g := range *d.RoomGroups {
			if g.Images == nil {
				ve.add(fmt.Sprintf("data.room_groups[%d].images", i), "must not be null")
			}
			if g.RoomAmenities == nil {
				ve.add(fmt.Sprintf("data.room_groups[%d].room_amenities", i), "must not be null")
			}
			if g.RgExt == nil {
				ve.add(fmt.Sprintf("data.room_groups[%d].rg_ext", i), "must not be null")
			}
		}
	}
	if len(ve.Problems) > 0 {
		return nil, ve
	}

	rec := &domain.DetailRecord{
		ID:          *d.ID,
		Name:        d.Name,
		Kind:        d.Kind,
		Address:     d.Address,
		PostalCode:  deref(d.PostalCode),
		Email:       deref(d.Email),
		Phone:       deref(d.Phone),
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		StarRating:  d.StarRating,
		CheckInTime: deref(d.CheckInTime),
		IsClosed:    d.IsClosed,
		Images:      *d.Images,
		Description: d.DescriptionStruct,
		SerpFilters: *d.SerpFilters,
	}
	rec.CheckOutTime = deref(d.CheckOutTime)
	if d.Region != nil {
		rec.Region = *d.Region
	}
	rec.AmenityGroups = make([]domain.AmenityGroup, 0, len(*d.AmenityGroups))
	for _, g := range *d.AmenityGroups {
		rec.AmenityGroups = append(rec.AmenityGroups, domain.AmenityGroup{
			GroupName: deref(g.GroupName),
			Amenities: *g.Amenities,
		})
	}
	rec.RoomGroups = make([]domain.RoomGroup, 0, len(*d.RoomGroups))
	for _, g := range *d.RoomGroups {
		rg := domain.RoomGroup{
			Name:          g.Name,
			Images:        *g.Images,
			RoomAmenities: *g.RoomAmenities,
		}
		if g.RoomGroupID != nil {
			rg.RoomGroupID = *g.RoomGroupID
		}
		rec.RoomGroups = append(rec.RoomGroups, rg)
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
