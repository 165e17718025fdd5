package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationNameConflict = errors.New("organization name conflict")
	ErrOrganizationInUse        = errors.New("organization cannot be deleted as it owns buildings")
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id int) (*models.Organization, error)
	GetAll(ctx context.Context) ([]models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id int) error
}

type postgresOrganizationRepository struct {
	db *sql.DB
}

func NewPostgresOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &postgresOrganizationRepository{db: db}
}

func mapOrganizationWriteError(err error) error {
	if pqErr, ok := pqError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "organizations_name_key" {
		return ErrOrganizationNameConflict
	}
	return err
}

func (r *postgresOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `INSERT INTO organizations (name, address) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, org.Name, org.Address).Scan(&org.ID); err != nil {
		return mapOrganizationWriteError(err)
	}
	return nil
}

func (r *postgresOrganizationRepository) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	query := `SELECT id, name, address FROM organizations WHERE id = $1`

	var org models.Organization
	err := r.db.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Name, &org.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *postgresOrganizationRepository) GetAll(ctx context.Context) ([]models.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address FROM organizations ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]models.Organization, 0)
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Address); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *postgresOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `UPDATE organizations SET name = $1, address = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, org.Name, org.Address, org.ID)
	if err != nil {
		return mapOrganizationWriteError(err)
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		// ON DELETE RESTRICT на buildings.organization_id
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return ErrOrganizationInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}
