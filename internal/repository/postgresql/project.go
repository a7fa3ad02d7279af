package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProposalRepository {
	return &projectRepositoryImpl{db: db}
}

const proposalColumns = `
	p.id, p.title, p.description, p.proposed_by, p.status, p.approved_by, p.approved_at,
	p.created_at, p.updated_at,
	e.name AS proposed_by_name,
	COALESCE(ARRAY(SELECT m.employee_id::text FROM project_proposal_members m WHERE m.proposal_id = p.id ORDER BY m.employee_id), '{}') AS employee_ids`

const proposalFrom = `
	FROM project_proposals p
	JOIN employees e ON p.proposed_by = e.id`

func scanProposal(row pgx.Row) (project.Proposal, error) {
	var p project.Proposal
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.ProposedBy, &p.Status, &p.ApprovedBy, &p.ApprovedAt,
		&p.CreatedAt, &p.UpdatedAt,
		&p.ProposedByName,
		&p.EmployeeIDs,
	)
	return p, err
}

func (r *projectRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (project.Proposal, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProposal(q.QueryRow(ctx, "SELECT "+proposalColumns+proposalFrom+" WHERE "+where, args...))
	if err != nil {
		if isNotFound(err) {
			return project.Proposal{}, project.ErrProposalNotFound
		}
		return project.Proposal{}, fmt.Errorf("failed to get project proposal: %w", err)
	}
	return p, nil
}

func (r *projectRepositoryImpl) GetByID(ctx context.Context, id string) (project.Proposal, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *projectRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (project.Proposal, error) {
	return r.getOne(ctx, "p.id = $1 FOR UPDATE OF p", id)
}

// List shows everything to ViewAll callers; others see proposals they made or
// are a member of.
func (r *projectRepositoryImpl) List(ctx context.Context, filter project.ProposalFilter) ([]project.Proposal, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if !filter.ViewAll {
		conditions = append(conditions, fmt.Sprintf(
			"(p.proposed_by = $%d OR EXISTS (SELECT 1 FROM project_proposal_members m WHERE m.proposal_id = p.id AND m.employee_id = $%d))",
			argIdx, argIdx))
		args = append(args, filter.ViewerID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+proposalFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count project proposals: %w", err)
	}

	query := "SELECT " + proposalColumns + proposalFrom + " WHERE " + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list project proposals: %w", err)
	}
	defer rows.Close()

	proposals := []project.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// Create writes the proposal and its members; callers run it in a transaction.
func (r *projectRepositoryImpl) Create(ctx context.Context, p project.Proposal) (project.Proposal, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = newID()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO project_proposals (id, title, description, proposed_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Description, p.ProposedBy, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return project.Proposal{}, fmt.Errorf("failed to create project proposal: %w", err)
	}

	if len(p.EmployeeIDs) > 0 {
		_, err = q.Exec(ctx, `
			INSERT INTO project_proposal_members (proposal_id, employee_id)
			SELECT $1, unnest($2::uuid[])
		`, p.ID, p.EmployeeIDs)
		if err != nil {
			if isForeignKeyViolation(err) {
				return project.Proposal{}, project.ErrUnknownMembers
			}
			return project.Proposal{}, fmt.Errorf("failed to add project members: %w", err)
		}
	}
	return p, nil
}

func (r *projectRepositoryImpl) UpdateStatus(ctx context.Context, p project.Proposal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE project_proposals SET status = $2, approved_by = $3, approved_at = $4, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Status, p.ApprovedBy, p.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to update project proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProposalNotFound
	}
	return nil
}

func (r *projectRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM project_proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProposalNotFound
	}
	return nil
}
