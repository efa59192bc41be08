package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mellihq/melli-ads/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxTitle       = 255
	maxDescription = 1000
	maxCategory    = 100
	maxLocation    = 255
	maxEmail       = 255
	maxPhone       = 20
	maxTag         = 50
)

// AdvertisementPayload is the decoded body of create and update requests.
// Pointer fields distinguish "absent" from "present but empty".
type AdvertisementPayload struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Content      *string    `json:"content"`
	Category     *string    `json:"category"`
	Location     *string    `json:"location"`
	Price        *float64   `json:"price"`
	ContactEmail *string    `json:"contact_email"`
	ContactPhone *string    `json:"contact_phone"`
	Tags         []string   `json:"tags"`
	IsActive     *bool      `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// CreateAdvertisement checks a creation payload: required fields must be
// present and every supplied field must be in range. A nil return means
// valid.
func CreateAdvertisement(p AdvertisementPayload) model.ValidationErrors {
	errs := model.ValidationErrors{}
	requireString(errs, "title", p.Title, maxTitle)
	requireString(errs, "description", p.Description, maxDescription)
	requireString(errs, "content", p.Content, 0)
	checkOptional(errs, p)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateAdvertisement checks a partial update: absent fields pass, supplied
// required fields must not be emptied.
func UpdateAdvertisement(p AdvertisementPayload) model.ValidationErrors {
	errs := model.ValidationErrors{}
	if p.Title != nil {
		requireString(errs, "title", p.Title, maxTitle)
	}
	if p.Description != nil {
		requireString(errs, "description", p.Description, maxDescription)
	}
	if p.Content != nil {
		requireString(errs, "content", p.Content, 0)
	}
	checkOptional(errs, p)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkOptional(errs model.ValidationErrors, p AdvertisementPayload) {
	maxLen(errs, "category", p.Category, maxCategory)
	maxLen(errs, "location", p.Location, maxLocation)
	if p.Price != nil && *p.Price < 0 {
		errs["price"] = "must not be negative"
	}
	if p.ContactEmail != nil && *p.ContactEmail != "" {
		if len(*p.ContactEmail) > maxEmail || !emailRx.MatchString(*p.ContactEmail) {
			errs["contact_email"] = "must be a valid email address"
		}
	}
	maxLen(errs, "contact_phone", p.ContactPhone, maxPhone)
	for i, tag := range p.Tags {
		if len(tag) > maxTag {
			errs[fmt.Sprintf("tags.%d", i)] = fmt.Sprintf("exceeds %d characters", maxTag)
		}
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(time.Now()) {
		errs["expires_at"] = "must be in the future"
	}
}

func requireString(errs model.ValidationErrors, field string, v *string, limit int) {
	if v == nil || *v == "" {
		errs[field] = "is required"
		return
	}
	if limit > 0 && len(*v) > limit {
		errs[field] = fmt.Sprintf("exceeds %d characters", limit)
	}
}

func maxLen(errs model.ValidationErrors, field string, v *string, limit int) {
	if v != nil && len(*v) > limit {
		errs[field] = fmt.Sprintf("exceeds %d characters", limit)
	}
}
