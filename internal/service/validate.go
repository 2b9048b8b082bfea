package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
)

var (
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	phoneRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func validateCreateCommand(cmd *hospital.CreateHospitalCommand) error {
	var errs []string

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		errs = append(errs, "Hospital name is required")
	} else if utf8.RuneCountInString(name) > hospital.MaxNameLen {
		errs = append(errs, "Hospital name must be less than 200 characters")
	}

	errs = append(errs, validateOptionalFields(cmd.Address, cmd.Contact, cmd.Location)...)

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateUpdateCommand(cmd *hospital.UpdateHospitalCommand) error {
	if cmd.IsEmpty() {
		return &ValidationError{Fields: []string{"at least one field must be provided for update"}}
	}

	var errs []string

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			errs = append(errs, "Hospital name is required")
		} else if utf8.RuneCountInString(name) > hospital.MaxNameLen {
			errs = append(errs, "Hospital name must be less than 200 characters")
		}
	}

	errs = append(errs, validateOptionalFields(cmd.Address, cmd.Contact, cmd.Location)...)

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// validateOptionalFields checks the per-field rules shared by create and
// update. Blank optional values pass; present values must match their rule.
func validateOptionalFields(addr *hospital.Address, contact *hospital.Contact, loc *hospital.Location) []string {
	var errs []string

	if addr != nil {
		if utf8.RuneCountInString(strings.TrimSpace(addr.Street)) > hospital.MaxStreetLen {
			errs = append(errs, "Street must be less than 200 characters")
		}
		if utf8.RuneCountInString(strings.TrimSpace(addr.City)) > hospital.MaxCityLen {
			errs = append(errs, "City must be less than 100 characters")
		}
		if utf8.RuneCountInString(strings.TrimSpace(addr.State)) > hospital.MaxStateLen {
			errs = append(errs, "State must be less than 100 characters")
		}
		if addr.Pincode != "" && !pincodeRe.MatchString(addr.Pincode) {
			errs = append(errs, "Pincode must be a 6-digit number")
		}
	}

	if loc != nil && len(loc.Coordinates) != 2 {
		errs = append(errs, "Coordinates must contain [longitude, latitude]")
	}

	if contact != nil {
		if contact.Phone != "" && !phoneRe.MatchString(contact.Phone) {
			errs = append(errs, "Phone must be a valid 10-digit number")
		}
		if contact.Email != "" && !emailRe.MatchString(contact.Email) {
			errs = append(errs, "Email must be a valid email address")
		}
	}

	return errs
}
