package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gofalre.io/storefront/models"
)

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "416-555-1234",
		Address:   "1 Queen St W",
		City:      "Toronto",
		State:     "ON",
		ZipCode:   "M5H 2M9",
		Country:   "Canada",
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.ShippingAddress)
		wantErr bool
	}{
		{"valid canadian address", func(a *models.ShippingAddress) {}, false},
		{"valid us address", func(a *models.ShippingAddress) {
			a.Country = "United States"
			a.ZipCode = "10001"
		}, false},
		{"valid us zip+4", func(a *models.ShippingAddress) {
			a.Country = "United States"
			a.ZipCode = "10001-1234"
		}, false},
		{"missing first name", func(a *models.ShippingAddress) { a.FirstName = "" }, true},
		{"blank city", func(a *models.ShippingAddress) { a.City = "   " }, true},
		{"malformed email", func(a *models.ShippingAddress) { a.Email = "not-an-email" }, true},
		{"malformed phone", func(a *models.ShippingAddress) { a.Phone = "12345" }, true},
		{"phone with country code", func(a *models.ShippingAddress) { a.Phone = "+1 (416) 555-1234" }, false},
		{"bad canadian postal code", func(a *models.ShippingAddress) { a.ZipCode = "12345" }, true},
		{"bad us zip", func(a *models.ShippingAddress) {
			a.Country = "United States"
			a.ZipCode = "M5H 2M9"
		}, true},
		{"other countries skip the postal check", func(a *models.ShippingAddress) {
			a.Country = "Germany"
			a.ZipCode = "10115"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)

			err := ValidateAddress(addr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
