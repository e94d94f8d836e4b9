package domain

import (
	"strings"
	"time"
)

const maxBioLength = 650

type Profile struct {
	UserID           int64     `json:"user_id"`
	Verified         bool      `json:"verified"`
	Bio              string    `json:"bio"`
	BusinessName     string    `json:"business_name"`
	BusinessType     string    `json:"business_type"`
	BusinessLocation string    `json:"business_location"`
	TargetAudience   string    `json:"target_audience"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	Bio              *string `json:"bio,omitempty"`
	BusinessName     *string `json:"business_name,omitempty"`
	BusinessType     *string `json:"business_type,omitempty"`
	BusinessLocation *string `json:"business_location,omitempty"`
	TargetAudience   *string `json:"target_audience,omitempty"`
}

func (r *UpdateProfileRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Bio)
	trim(r.BusinessName)
	trim(r.BusinessType)
	trim(r.BusinessLocation)
	trim(r.TargetAudience)
}

func (r *UpdateProfileRequest) Validate() error {
	verr := NewValidationError()
	if r.Bio != nil && len(*r.Bio) > maxBioLength {
		verr.Add("bio", "bio must be at most 650 characters")
	}
	check := func(field string, v *string) {
		if v != nil && len(*v) > 255 {
			verr.Add(field, field+" must be at most 255 characters")
		}
	}
	check("business_name", r.BusinessName)
	check("business_type", r.BusinessType)
	check("business_location", r.BusinessLocation)
	check("target_audience", r.TargetAudience)
	return verr.OrNil()
}
