package domain

import "context"

// Address is a postal address shared between events.
// Natural key: (City, Street, Number).
type Address struct {
	ID     string `json:"id"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number int    `json:"number"`
}

// Point is a geographic coordinate shared between events.
// Natural key: (Longitude, Latitude).
type Point struct {
	ID        string  `json:"id"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// AddressRepository defines the interface for address storage.
type AddressRepository interface {
	FindByNaturalKey(ctx context.Context, city, street string, number int) (*Address, error)
	// FindOrCreate sets address.ID to the row matching its natural key,
	// inserting the address first if no such row exists.
	FindOrCreate(ctx context.Context, address *Address) error
}

// PointRepository defines the interface for point storage.
type PointRepository interface {
	FindByNaturalKey(ctx context.Context, longitude, latitude float64) (*Point, error)
	// FindOrCreate sets point.ID to the row matching its natural key,
	// inserting the point first if no such row exists.
	FindOrCreate(ctx context.Context, point *Point) error
}
