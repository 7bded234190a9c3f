// Package address models postal addresses held on a client's identity record.
package address

import "strings"

// Address is an immutable postal address. The zero value is an empty address.
type Address struct {
	buildingNumber string
	streetName     string
	postalCode     string
	city           string
	country        string
}

// New builds an Address from structured components, trimming each one.
func New(buildingNumber, streetName, postalCode, city, country string) Address {
	return Address{
		buildingNumber: strings.TrimSpace(buildingNumber),
		streetName:     strings.TrimSpace(streetName),
		postalCode:     strings.TrimSpace(postalCode),
		city:           strings.TrimSpace(city),
		country:        strings.TrimSpace(country),
	}
}

func (a Address) BuildingNumber() string { return a.buildingNumber }
func (a Address) StreetName() string     { return a.streetName }
func (a Address) PostalCode() string     { return a.postalCode }
func (a Address) City() string           { return a.city }
func (a Address) Country() string        { return a.country }

// Equal reports structural equality: every component must match exactly.
func (a Address) Equal(other Address) bool {
	return a == other
}

// IsZero reports whether no component is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address on one line, e.g. "62 Main Street, 26-923 Springfield, Poland".
func (a Address) String() string {
	street := strings.TrimSpace(a.buildingNumber + " " + a.streetName)
	city := strings.TrimSpace(a.postalCode + " " + a.city)

	parts := make([]string, 0, 3)
	for _, p := range []string{street, city, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
