package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gofalre.io/storefront/models"
)

var ErrInvalidAddress = errors.New("invalid shipping address")

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)

	// postal code formats by country
	caPostalPattern = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`)
	usZipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ValidateAddress checks the checkout form fields. All errors wrap
// ErrInvalidAddress and name the first offending field.
func ValidateAddress(a models.ShippingAddress) error {
	required := []struct {
		field string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zip_code", a.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidAddress, r.field)
		}
	}

	if !emailPattern.MatchString(a.Email) {
		return fmt.Errorf("%w: malformed email", ErrInvalidAddress)
	}
	if !phonePattern.MatchString(a.Phone) {
		return fmt.Errorf("%w: malformed phone number", ErrInvalidAddress)
	}

	switch a.Country {
	case "Canada":
		if !caPostalPattern.MatchString(a.ZipCode) {
			return fmt.Errorf("%w: malformed postal code", ErrInvalidAddress)
		}
	case "United States":
		if !usZipPattern.MatchString(a.ZipCode) {
			return fmt.Errorf("%w: malformed zip code", ErrInvalidAddress)
		}
	}

	return nil
}
