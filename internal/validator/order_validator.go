package validator

import (
	"errors"
	"strings"

	"app/internal/domain/model"
)

// 配送先の必須項目を検証する。Countryは未指定ならUSAで埋める。
func ValidateShippingAddress(a *model.ShippingAddress) error {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)

	if a.Street == "" {
		return errors.New("Street address is required")
	}
	if a.City == "" {
		return errors.New("City is required")
	}
	if a.State == "" {
		return errors.New("State is required")
	}
	if a.ZipCode == "" {
		return errors.New("Zip code is required")
	}
	if a.PhoneNumber == "" {
		return errors.New("Phone number is required")
	}
	if a.Country == "" {
		a.Country = "USA"
	}
	return nil
}
