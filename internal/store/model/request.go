package model

import (
	"strings"

	"store-directory/pkg/utils"
)

// StoreRequest is the normalized shape of the create/edit store form.
// It is bound and sanitized once at the handler boundary and never
// mutated downstream.
type StoreRequest struct {
	Name        string   `form:"name" validate:"required,min=2,max=255"`
	Description string   `form:"description" validate:"max=5000"`
	Tags        []string `form:"tags"`
	Address     string   `form:"address" validate:"max=500"`
	Lng         float64  `form:"lng" validate:"gte=-180,lte=180"`
	Lat         float64  `form:"lat" validate:"gte=-90,lte=90"`

	// Photo is set by the upload step, not by the form itself.
	Photo *string `form:"-"`
}

// Normalize sanitizes free-text fields and drops empty tag values. The
// location type is not carried on the request at all; persistence always
// writes LocationPointType.
func (r *StoreRequest) Normalize() {
	r.Name = utils.SanitizeString(r.Name)
	r.Description = utils.SanitizeString(r.Description)
	r.Address = utils.SanitizeString(r.Address)

	tags := r.Tags[:0]
	for _, t := range r.Tags {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	r.Tags = tags
}
