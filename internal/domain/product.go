package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Locations is the canonical set of towns the platform serves. Product
// locations and delivery areas are normalized against this set at the
// system boundary and never trusted in their raw form further in.
var Locations = []string{"Irrua", "Ekpoma", "Uromi"}

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a sellable catalog entry. Stock is the authoritative sellable
// count; a product with stock 0 stays listed but cannot be ordered.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Vendor      string    `json:"vendor"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeLocation maps mixed-case location strings onto the canonical set.
func NormalizeLocation(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, loc := range Locations {
		if strings.EqualFold(trimmed, loc) {
			return loc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocation, raw)
}

// NewProduct validates and normalizes raw product attributes into a Product.
// All catalog writes go through here so nothing downstream has to deal with
// optional fields or unnormalized locations.
func NewProduct(name, description, vendor, location, category, imageURL string, price float64, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	vendor = strings.TrimSpace(vendor)
	category = strings.TrimSpace(category)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", ErrInvalidProduct)
	}
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	loc, err := NormalizeLocation(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	return &Product{
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		Stock:       stock,
		Vendor:      vendor,
		Location:    loc,
		Category:    category,
		ImageURL:    strings.TrimSpace(imageURL),
	}, nil
}
