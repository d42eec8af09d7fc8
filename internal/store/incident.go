package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"waterline/internal/utils"
	"waterline/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	incidentTableName   = "waterline.incidents"
	assignmentTableName = "waterline.incident_assignments"
)

var incidentColumns = utils.StructTagValues(types.Incident{})

type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

func (r *IncidentRepository) Incident(ctx context.Context, incidentID string) (*types.Incident, error) {
	query, args, err := psql().
		Select(incidentColumns...).
		From(incidentTableName).
		Where(sq.Eq{"id": incidentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate incident query: %w", err)
	}

	var incident types.Incident
	err = pgxscan.Get(ctx, r.pool, &incident, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to fetch incident: %w", err)
	}

	return &incident, nil
}

// Create persists a new report. Status and severity always start at their
// defaults regardless of what the caller set.
func (r *IncidentRepository) Create(ctx context.Context, incident *types.Incident) error {
	now := time.Now()
	incident.ID = utils.NanoID()
	incident.Status = types.IncidentStatusReceived
	incident.Severity = types.SeverityModerate
	incident.CreatedAt = now
	incident.UpdatedAt = now

	query, args, err := psql().
		Insert(incidentTableName).
		SetMap(utils.StructToMap(incident)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert incident query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create incident")
}

// IncidentsByAccount returns the account's own reports, newest first,
// narrowed by the optional filters.
func (r *IncidentRepository) IncidentsByAccount(ctx context.Context, accountID string, filter types.IncidentFilter) ([]*types.Incident, error) {
	builder := psql().
		Select(incidentColumns...).
		From(incidentTableName).
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("created_at DESC")

	if filter.IssueType != "" {
		builder = builder.Where(sq.Eq{"issue_type": filter.IssueType})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate incidents-by-account query: %w", err)
	}

	incidents := make([]*types.Incident, 0)
	if err := pgxscan.Select(ctx, r.pool, &incidents, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch incidents: %w", err)
	}

	return incidents, nil
}

// Incidents returns reports across all accounts for the administrative
// surface, joined with the reporter.
func (r *IncidentRepository) Incidents(ctx context.Context, filter types.AdminIncidentFilter) ([]*types.IncidentRow, error) {
	columns := make([]string, 0, len(incidentColumns)+3)
	for _, c := range incidentColumns {
		columns = append(columns, "i."+c)
	}
	columns = append(columns,
		"a.id_number AS reporter_id_number",
		"a.first_name AS reporter_first_name",
		"a.last_name AS reporter_last_name",
	)

	builder := psql().
		Select(columns...).
		From(incidentTableName + " i").
		Join(accountTableName + " a ON a.id = i.account_id").
		OrderBy("i.created_at DESC")

	if filter.IssueType != "" {
		builder = builder.Where(sq.Eq{"i.issue_type": filter.IssueType})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"i.status": filter.Status})
	}
	if filter.Severity != "" {
		builder = builder.Where(sq.Eq{"i.severity": filter.Severity})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"i.description": like},
			sq.ILike{"a.id_number": like},
			sq.ILike{"a.first_name": like},
			sq.ILike{"a.last_name": like},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin incidents query: %w", err)
	}

	rows := make([]*types.IncidentRow, 0)
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch admin incidents: %w", err)
	}

	return rows, nil
}

func (r *IncidentRepository) UpdateStatus(ctx context.Context, incidentID string, status types.IncidentStatus) error {
	return r.update(ctx, incidentID, map[string]any{"status": status})
}

func (r *IncidentRepository) UpdateTriage(ctx context.Context, incidentID string, status types.IncidentStatus, severity types.Severity) error {
	return r.update(ctx, incidentID, map[string]any{
		"status":   status,
		"severity": severity,
	})
}

func (r *IncidentRepository) update(ctx context.Context, incidentID string, set map[string]any) error {
	set["updated_at"] = time.Now()

	query, args, err := psql().
		Update(incidentTableName).
		SetMap(set).
		Where(sq.Eq{"id": incidentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update incident query for %s: %w", incidentID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update incident %s: %w", incidentID, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrIncidentNotFound
	}

	return nil
}

// AssignedAccountIDs lists the staff accounts assigned to an incident.
func (r *IncidentRepository) AssignedAccountIDs(ctx context.Context, incidentID string) ([]string, error) {
	query, args, err := psql().
		Select("account_id").
		From(assignmentTableName).
		Where(sq.Eq{"incident_id": incidentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignments query: %w", err)
	}

	ids := make([]string, 0)
	if err := pgxscan.Select(ctx, r.pool, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return ids, nil
}

// SetAssignments replaces the assigned-staff set for an incident.
func (r *IncidentRepository) SetAssignments(ctx context.Context, incidentID string, accountIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin assignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql().
		Delete(assignmentTableName).
		Where(sq.Eq{"incident_id": incidentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clear assignments query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	if len(accountIDs) > 0 {
		builder := psql().
			Insert(assignmentTableName).
			Columns("incident_id", "account_id")
		for _, accountID := range accountIDs {
			builder = builder.Values(incidentID, accountID)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert assignments query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
	}

	return tx.Commit(ctx)
}
