package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"partnerhub/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

const (
	PARTNER_MAX_STRING_LENGTH      = 255
	PARTNER_MAX_DESCRIPTION_LENGTH = 5000
)

var validate = validator.New()

// PartnerInput is a validated partner write set. Only the fields carried by
// the payload are applied to a partner.
type PartnerInput struct {
	Name        string
	Description *string
	Website     *string
	IsFeatured  *bool
	Level       *models.PartnerLevel
	Image       *string
	Location    *string
	Specialties []string

	present map[string]bool
}

func (in *PartnerInput) Has(field string) bool {
	return in.present[field]
}

// Apply copies the carried fields onto partner and returns the matching
// column names.
func (in *PartnerInput) Apply(partner *models.Partner) []string {
	columns := []string{}
	set := func(field string, assign func()) {
		if in.Has(field) {
			assign()
			columns = append(columns, field)
		}
	}

	set("name", func() { partner.Name = in.Name })
	set("description", func() { partner.Description = in.Description })
	set("website", func() { partner.Website = in.Website })
	set("is_featured", func() { partner.IsFeatured = in.IsFeatured })
	set("level", func() { partner.Level = in.Level })
	set("image", func() { partner.Image = in.Image })
	set("location", func() { partner.Location = in.Location })
	set("specialties", func() { partner.Specialties = in.Specialties })
	return columns
}

// ValidatePartner checks a decoded JSON object against the partner rules.
// Every rule runs; the returned *ValidationError lists all failures.
// Strings are trimmed and empty strings count as null.
func ValidatePartner(payload map[string]json.RawMessage) (*PartnerInput, error) {
	v := &partnerValidator{payload: payload, errs: &ValidationError{}}
	in := &PartnerInput{present: map[string]bool{}}

	if name := v.str("name", true, PARTNER_MAX_STRING_LENGTH, false); name != nil {
		in.Name = *name
	}
	in.Description = v.str("description", false, PARTNER_MAX_DESCRIPTION_LENGTH, false)
	in.Website = v.str("website", false, PARTNER_MAX_STRING_LENGTH, true)
	in.IsFeatured = v.boolean("is_featured")
	in.Level = v.level("level")
	in.Image = v.str("image", false, PARTNER_MAX_STRING_LENGTH, true)
	in.Location = v.str("location", false, PARTNER_MAX_STRING_LENGTH, false)
	in.Specialties = v.specialties("specialties")

	if !v.errs.Empty() {
		return nil, errorx.Wrap(v.errs, errorx.Validation)
	}

	for field := range payload {
		in.present[field] = true
	}
	return in, nil
}

type partnerValidator struct {
	payload map[string]json.RawMessage
	errs    *ValidationError
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// lookup returns the raw value, or nil when the field is absent or null.
func (v *partnerValidator) lookup(field string) json.RawMessage {
	raw, ok := v.payload[field]
	if !ok || isNull(raw) {
		return nil
	}
	return raw
}

func (v *partnerValidator) str(field string, required bool, max int, isURL bool) *string {
	raw := v.lookup(field)
	if raw == nil {
		if required {
			v.errs.Add(field, fmt.Sprintf("The %s field is required.", attribute(field)))
		}
		return nil
	}

	if isURL {
		return v.url(field, raw, max)
	}
	value, _ := v.checkString(field, raw, required, max)
	return value
}

// url applies the url and max rules to an optional value. Both rules are
// reported when both fail.
func (v *partnerValidator) url(field string, raw json.RawMessage, max int) *string {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		v.errs.Add(field, fmt.Sprintf("The %s field must be a valid URL.", attribute(field)))
		return nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	valid := true
	if !isAbsoluteURL(value) {
		v.errs.Add(field, fmt.Sprintf("The %s field must be a valid URL.", attribute(field)))
		valid = false
	}
	if validate.Var(value, fmt.Sprintf("max=%d", max)) != nil {
		v.errs.Add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", attribute(field), max))
		valid = false
	}
	if !valid {
		return nil
	}
	return &value
}

// isAbsoluteURL requires a scheme and a host, so opaque forms such as
// "mailto:" or "javascript:" are rejected.
func isAbsoluteURL(value string) bool {
	if validate.Var(value, "url") != nil {
		return false
	}
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// checkString applies the string, required and max rules to one raw value.
// A nil value with ok set means an empty optional string.
func (v *partnerValidator) checkString(field string, raw json.RawMessage, required bool, max int) (*string, bool) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		v.errs.Add(field, fmt.Sprintf("The %s field must be a string.", attribute(field)))
		return nil, false
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			v.errs.Add(field, fmt.Sprintf("The %s field is required.", attribute(field)))
			return nil, false
		}
		return nil, true
	}

	if validate.Var(value, fmt.Sprintf("max=%d", max)) != nil {
		v.errs.Add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", attribute(field), max))
		return nil, false
	}
	return &value, true
}

func (v *partnerValidator) boolean(field string) *bool {
	raw := v.lookup(field)
	if raw == nil {
		return nil
	}

	var value bool
	switch strings.TrimSpace(string(raw)) {
	case "true", "1", `"1"`:
		value = true
	case "false", "0", `"0"`:
		value = false
	default:
		v.errs.Add(field, fmt.Sprintf("The %s field must be true or false.", attribute(field)))
		return nil
	}
	return &value
}

func (v *partnerValidator) level(field string) *models.PartnerLevel {
	raw := v.lookup(field)
	if raw == nil {
		return nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		v.errs.Add(field, fmt.Sprintf("The selected %s is invalid.", attribute(field)))
		return nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	level := models.PartnerLevel(value)
	if !level.Valid() {
		v.errs.Add(field, fmt.Sprintf("The selected %s is invalid.", attribute(field)))
		return nil
	}
	return &level
}

func (v *partnerValidator) specialties(field string) []string {
	raw := v.lookup(field)
	if raw == nil {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		v.errs.Add(field, fmt.Sprintf("The %s field must be an array.", attribute(field)))
		return nil
	}

	values := make([]string, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s.%d", field, i)
		if isNull(item) {
			v.errs.Add(path, fmt.Sprintf("The %s field is required.", path))
			continue
		}

		value, ok := v.checkString(path, item, true, PARTNER_MAX_STRING_LENGTH)
		if ok && value != nil {
			values = append(values, *value)
		}
	}
	return values
}
