package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

type pointRepository struct {
	DB *sql.DB
}

// NewPointRepository returns a domain.PointRepository implemented with Postgres.
func NewPointRepository(db *sql.DB) domain.PointRepository {
	return &pointRepository{DB: db}
}

func (r *pointRepository) FindByNaturalKey(ctx context.Context, longitude, latitude float64) (*domain.Point, error) {
	query := `
		SELECT id, longitude, latitude
		FROM points
		WHERE longitude = $1 AND latitude = $2
	`
	p := &domain.Point{}
	err := querierFromCtx(ctx, r.DB).QueryRowContext(ctx, query, longitude, latitude).Scan(&p.ID, &p.Longitude, &p.Latitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pointRepository) FindOrCreate(ctx context.Context, p *domain.Point) error {
	existing, err := r.FindByNaturalKey(ctx, p.Longitude, p.Latitude)
	if err == nil {
		p.ID = existing.ID
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	query := `
		INSERT INTO points (longitude, latitude)
		VALUES ($1, $2)
		ON CONFLICT (longitude, latitude) DO NOTHING
		RETURNING id
	`
	err = querierFromCtx(ctx, r.DB).QueryRowContext(ctx, query, p.Longitude, p.Latitude).Scan(&p.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// lost the race to a concurrent insert
	existing, err = r.FindByNaturalKey(ctx, p.Longitude, p.Latitude)
	if err != nil {
		return err
	}
	p.ID = existing.ID
	return nil
}
