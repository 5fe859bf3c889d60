package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

type addressRepository struct {
	DB *sql.DB
}

// NewAddressRepository returns a domain.AddressRepository implemented with Postgres.
func NewAddressRepository(db *sql.DB) domain.AddressRepository {
	return &addressRepository{DB: db}
}

func (r *addressRepository) FindByNaturalKey(ctx context.Context, city, street string, number int) (*domain.Address, error) {
	query := `
		SELECT id, city, street, number
		FROM addresses
		WHERE city = $1 AND street = $2 AND number = $3
	`
	a := &domain.Address{}
	err := querierFromCtx(ctx, r.DB).QueryRowContext(ctx, query, city, street, number).Scan(&a.ID, &a.City, &a.Street, &a.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// FindOrCreate looks the address up by natural key and inserts it when missing.
// The insert tolerates a concurrent writer: on conflict the winner's row is read back.
func (r *addressRepository) FindOrCreate(ctx context.Context, a *domain.Address) error {
	existing, err := r.FindByNaturalKey(ctx, a.City, a.Street, a.Number)
	if err == nil {
		a.ID = existing.ID
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	query := `
		INSERT INTO addresses (city, street, number)
		VALUES ($1, $2, $3)
		ON CONFLICT (city, street, number) DO NOTHING
		RETURNING id
	`
	err = querierFromCtx(ctx, r.DB).QueryRowContext(ctx, query, a.City, a.Street, a.Number).Scan(&a.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	existing, err = r.FindByNaturalKey(ctx, a.City, a.Street, a.Number)
	if err != nil {
		return err
	}
	a.ID = existing.ID
	return nil
}
