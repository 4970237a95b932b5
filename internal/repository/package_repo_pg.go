package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dialectPostgres = "postgres"
	tablePackages   = "travel_packages"
)

var packageColumns = []any{
	"id", "name", "destination", "country", "package_type", "description",
	"start_date", "end_date", "booking_deadline",
	"base_price_cents", "discounted_price_cents", "discount_end_date",
	"total_rooms", "available_rooms", "age_limit", "is_visible", "created_at", "updated_at",
}

const packageSelect = `SELECT id, name, destination, country, package_type, description,
	start_date, end_date, booking_deadline,
	base_price_cents, discounted_price_cents, discount_end_date,
	total_rooms, available_rooms, age_limit, is_visible, created_at, updated_at
	FROM travel_packages`

type PGPackageRepository struct {
	db *pgxpool.Pool
}

func (r *PGPackageRepository) Create(ctx context.Context, p *domain.TravelPackage) error {
	return r.db.QueryRow(ctx, `INSERT INTO travel_packages (name, destination, country, package_type, description,
		start_date, end_date, booking_deadline, base_price_cents, discounted_price_cents, discount_end_date,
		total_rooms, available_rooms, age_limit, is_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Destination, p.Country, p.PackageType, p.Description,
		p.StartDate, p.EndDate, p.BookingDeadline, p.BasePriceCents, p.DiscountedPriceCents, p.DiscountEndDate,
		p.TotalRooms, p.AvailableRooms, p.AgeLimit, p.IsVisible).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGPackageRepository) GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error) {
	return getPackage(ctx, r.db, id)
}

// Search builds the catalogue query from the filter.
func (r *PGPackageRepository) Search(ctx context.Context, filter TripFilter) ([]domain.TravelPackage, error) {
	query, args, err := buildSearchQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]domain.TravelPackage, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}

func buildSearchQuery(filter TripFilter) (string, []any, error) {
	today := domain.DateOf(filter.Today)

	conditions := []exp.Expression{
		goqu.Or(goqu.C("booking_deadline").IsNull(), goqu.C("booking_deadline").Gte(today)),
	}
	if !filter.IncludeHidden {
		conditions = append(conditions, goqu.C("is_visible").IsTrue())
	}
	if !filter.IncludeEnded {
		conditions = append(conditions, goqu.C("end_date").Gte(today))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("destination").ILike(pattern),
			goqu.C("country").ILike(pattern),
		))
	}
	if filter.Category != "" {
		conditions = append(conditions, goqu.C("package_type").Eq(filter.Category))
	}
	if filter.DiscountedOnly {
		conditions = append(conditions,
			goqu.C("discounted_price_cents").IsNotNull(),
			goqu.C("discount_end_date").IsNotNull(),
			goqu.C("discount_end_date").Gte(today),
		)
	}

	ds := goqu.Dialect(dialectPostgres).
		From(tablePackages).
		Select(packageColumns...).
		Where(conditions...).
		Prepared(true)

	// цена, которую клиент заплатил бы сегодня
	effectivePrice := goqu.L(
		`CASE WHEN "discounted_price_cents" IS NOT NULL AND "discount_end_date" >= ? THEN "discounted_price_cents" ELSE "base_price_cents" END`,
		today,
	)

	switch filter.Sort {
	case SortByPriceAsc:
		ds = ds.Order(effectivePrice.Asc(), goqu.C("id").Asc())
	case SortByPriceDesc:
		ds = ds.Order(effectivePrice.Desc(), goqu.C("id").Asc())
	case SortByDateDesc:
		ds = ds.Order(goqu.C("start_date").Desc(), goqu.C("id").Asc())
	case SortByRoomsAsc:
		ds = ds.Order(goqu.C("available_rooms").Asc(), goqu.C("id").Asc())
	case SortByRoomsDesc:
		ds = ds.Order(goqu.C("available_rooms").Desc(), goqu.C("id").Asc())
	case SortByName:
		ds = ds.Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	default:
		ds = ds.Order(goqu.C("start_date").Asc(), goqu.C("id").Asc())
	}

	return ds.ToSQL()
}

func getPackage(ctx context.Context, q querier, id int64) (*domain.TravelPackage, error) {
	p, err := scanPackage(q.QueryRow(ctx, packageSelect+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("package %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func scanPackage(row pgx.Row) (*domain.TravelPackage, error) {
	var p domain.TravelPackage
	if err := row.Scan(&p.ID, &p.Name, &p.Destination, &p.Country, &p.PackageType, &p.Description,
		&p.StartDate, &p.EndDate, &p.BookingDeadline,
		&p.BasePriceCents, &p.DiscountedPriceCents, &p.DiscountEndDate,
		&p.TotalRooms, &p.AvailableRooms, &p.AgeLimit, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PackageRepository = (*PGPackageRepository)(nil)
