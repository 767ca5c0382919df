package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

// ErrInvalidTransition is returned when an entity is not in the state an
// operation requires.
var ErrInvalidTransition = errors.New("invalid_status_transition")

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Issue, error)
	List(ctx context.Context, status *models.IssueStatus) ([]*models.Issue, error)

	// Assign moves an OPEN issue to ASSIGNED and claims an Unassigned
	// technician whose specialty matches the issue category.
	Assign(ctx context.Context, issueID, technicianID uuid.UUID) (*models.Issue, error)

	// Resolve closes an ASSIGNED issue and frees its technician.
	Resolve(ctx context.Context, issueID uuid.UUID) (*models.Issue, error)
}

type issueRepo struct {
	db DB
}

func NewIssueRepository(db DB) IssueRepository {
	return &issueRepo{db: db}
}

func (r *issueRepo) Create(ctx context.Context, issue *models.Issue) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO issues (
            id, tenant_id, room_number, category, priority, description, status,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
        RETURNING created_at, updated_at
    `,
		issue.ID, issue.TenantID, issue.RoomNumber, issue.Category, issue.Priority,
		issue.Description, issue.Status,
	).Scan(&issue.CreatedAt, &issue.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ErrForeignKey
	}
	return err
}

func (r *issueRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return scanIssue(r.db.QueryRow(ctx, baseSelectIssue()+" WHERE id=$1", id))
}

func (r *issueRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Issue, error) {
	rows, err := r.db.Query(ctx, baseSelectIssue()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanIssue)
}

func (r *issueRepo) List(ctx context.Context, status *models.IssueStatus) ([]*models.Issue, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.db.Query(ctx, baseSelectIssue()+" WHERE status=$1 ORDER BY created_at DESC", *status)
	} else {
		rows, err = r.db.Query(ctx, baseSelectIssue()+" ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanIssue)
}

func (r *issueRepo) Assign(ctx context.Context, issueID, technicianID uuid.UUID) (*models.Issue, error) {
	var out *models.Issue
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		issue, err := scanIssue(tx.QueryRow(ctx, baseSelectIssue()+" WHERE id=$1 FOR UPDATE", issueID))
		if err != nil {
			return err
		}
		if issue == nil {
			return pgx.ErrNoRows
		}
		if issue.Status != models.IssueOpen {
			return ErrInvalidTransition
		}

		tech, err := scanTechnician(tx.QueryRow(ctx, baseSelectTechnician()+" WHERE id=$1 FOR UPDATE", technicianID))
		if err != nil {
			return err
		}
		if tech == nil {
			return ErrTechnicianNotFound
		}
		if tech.Specialty != issue.Category {
			return ErrSpecialtyMismatch
		}

		tag, err := tx.Exec(ctx, `
            UPDATE technicians SET assignment_status='Assigned', updated_at=NOW()
            WHERE id=$1 AND assignment_status='Unassigned'
        `, technicianID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrTechnicianBusy
		}

		out, err = scanIssue(tx.QueryRow(ctx, `
            UPDATE issues SET status='ASSIGNED', technician_id=$1, updated_at=NOW()
            WHERE id=$2 AND status='OPEN'
            RETURNING `+issueColumns, technicianID, issueID))
		if err != nil {
			return err
		}
		if out == nil {
			return ErrInvalidTransition
		}
		return nil
	})
	return out, err
}

func (r *issueRepo) Resolve(ctx context.Context, issueID uuid.UUID) (*models.Issue, error) {
	var out *models.Issue
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = scanIssue(tx.QueryRow(ctx, `
            UPDATE issues SET status='RESOLVED', resolved_at=NOW(), updated_at=NOW()
            WHERE id=$1 AND status='ASSIGNED'
            RETURNING `+issueColumns, issueID))
		if err != nil {
			return err
		}
		if out == nil {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issues WHERE id=$1)`, issueID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return pgx.ErrNoRows
			}
			return ErrInvalidTransition
		}

		if out.TechnicianID != nil {
			if _, err := tx.Exec(ctx, `
                UPDATE technicians SET assignment_status='Unassigned', updated_at=NOW()
                WHERE id=$1
            `, *out.TechnicianID); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

const issueColumns = `
            id, tenant_id, room_number, category, priority, description, status,
            technician_id, created_at, updated_at, resolved_at`

func baseSelectIssue() string {
	return "SELECT" + issueColumns + "\n        FROM issues\n"
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.RoomNumber,
		&i.Category,
		&i.Priority,
		&i.Description,
		&i.Status,
		&i.TechnicianID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ResolvedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}
