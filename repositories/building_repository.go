package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrBuildingNotFound            = errors.New("building not found")
	ErrBuildingOrganizationInvalid = errors.New("building organization conflict or invalid")
	ErrBuildingInvalidValue        = errors.New("building places or area out of range")
)

type BuildingRepository interface {
	Create(ctx context.Context, b *models.Building) error
	GetByID(ctx context.Context, id int) (*models.Building, error)
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	ListTypes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, b *models.Building) error
	Delete(ctx context.Context, id int) error
}

type postgresBuildingRepository struct {
	db *sql.DB
}

func NewPostgresBuildingRepository(db *sql.DB) BuildingRepository {
	return &postgresBuildingRepository{db: db}
}

const buildingSelect = `
	SELECT b.id, b.organization_id, b.name, b.address, b.building_type, b.places, b.area, o.name
	FROM buildings b
	JOIN organizations o ON o.id = b.organization_id`

func scanBuilding(row interface{ Scan(dest ...interface{}) error }) (*models.Building, error) {
	var b models.Building
	err := row.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Address, &b.Type, &b.Places, &b.Area, &b.OrganizationName)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func mapBuildingWriteError(err error) error {
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			if pqErr.Constraint == "buildings_organization_id_fkey" {
				return ErrBuildingOrganizationInvalid
			}
		case pqCheckViolation:
			return ErrBuildingInvalidValue
		}
	}
	return err
}

func (r *postgresBuildingRepository) Create(ctx context.Context, b *models.Building) error {
	query := `
		INSERT INTO buildings (organization_id, name, address, building_type, places, area)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		b.OrganizationID, b.Name, b.Address, b.Type, b.Places, b.Area,
	).Scan(&b.ID)
	if err != nil {
		return mapBuildingWriteError(err)
	}
	return nil
}

func (r *postgresBuildingRepository) GetByID(ctx context.Context, id int) (*models.Building, error) {
	b, err := scanBuilding(r.db.QueryRowContext(ctx, buildingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return b, nil
}

// buildBuildingWhere собирает условие фильтра; значения передаются только через плейсхолдеры.
func buildBuildingWhere(filter models.BuildingFilter) (string, []interface{}) {
	where := []string{}
	args := []interface{}{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		where = append(where, fmt.Sprintf("b.building_type = $%d", len(args)))
	}
	if filter.MinPlaces != nil {
		args = append(args, *filter.MinPlaces)
		where = append(where, fmt.Sprintf("b.places >= $%d", len(args)))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *postgresBuildingRepository) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	cond, args := buildBuildingWhere(filter)
	query := buildingSelect + cond + ` ORDER BY b.name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buildings := make([]models.Building, 0)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildings, nil
}

func (r *postgresBuildingRepository) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT building_type FROM buildings ORDER BY building_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *postgresBuildingRepository) Update(ctx context.Context, b *models.Building) error {
	query := `
		UPDATE buildings
		SET organization_id = $1, name = $2, address = $3, building_type = $4, places = $5, area = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		b.OrganizationID, b.Name, b.Address, b.Type, b.Places, b.Area, b.ID,
	)
	if err != nil {
		return mapBuildingWriteError(err)
	}
	return checkAffectedRows(result, ErrBuildingNotFound)
}

func (r *postgresBuildingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBuildingNotFound)
}
