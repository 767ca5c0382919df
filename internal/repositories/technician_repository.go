package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

var (
	ErrTechnicianNotFound = errors.New("technician_not_found")
	ErrTechnicianBusy     = errors.New("technician_busy")
	ErrSpecialtyMismatch  = errors.New("specialty_mismatch")
)

type TechnicianFilter struct {
	Specialty *models.IssueCategory
	Status    *models.AssignmentStatus
}

type TechnicianRepository interface {
	Create(ctx context.Context, t *models.Technician) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	List(ctx context.Context, filter TechnicianFilter) ([]*models.Technician, error)
	// DeleteIfUnassigned removes a technician with no open assignment.
	DeleteIfUnassigned(ctx context.Context, id uuid.UUID) error
}

type technicianRepo struct {
	db DB
}

func NewTechnicianRepository(db DB) TechnicianRepository {
	return &technicianRepo{db: db}
}

func (r *technicianRepo) Create(ctx context.Context, t *models.Technician) error {
	return r.db.QueryRow(ctx, `
        INSERT INTO technicians (
            id, name, email, phone_number, specialty, assignment_status, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
        RETURNING created_at, updated_at
    `,
		t.ID, t.Name, t.Email, t.PhoneNumber, t.Specialty, t.AssignmentStatus,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *technicianRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	return scanTechnician(r.db.QueryRow(ctx, baseSelectTechnician()+" WHERE id=$1", id))
}

func (r *technicianRepo) List(ctx context.Context, filter TechnicianFilter) ([]*models.Technician, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Specialty != nil {
		args = append(args, *filter.Specialty)
		conds = append(conds, fmt.Sprintf("specialty=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("assignment_status=$%d", len(args)))
	}

	query := baseSelectTechnician()
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTechnician)
}

func (r *technicianRepo) DeleteIfUnassigned(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM technicians WHERE id=$1 AND assignment_status='Unassigned'
    `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return pgx.ErrNoRows
	}
	return ErrTechnicianBusy
}

func baseSelectTechnician() string {
	return `
        SELECT
            id, name, email, phone_number, specialty, assignment_status, created_at, updated_at
        FROM technicians
    `
}

func scanTechnician(row pgx.Row) (*models.Technician, error) {
	var t models.Technician
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.PhoneNumber,
		&t.Specialty,
		&t.AssignmentStatus,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
