package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

type CommissionRepository interface {
	CreateCommission(commission models.Commission) (models.Commission, error)
	ListCommissionsByEvent(eventID string) ([]models.Commission, error)
	ListUnassignedCommissions(schoolID string) ([]models.Commission, error)
}

type commissionRepository struct {
	db *sql.DB
}

func NewCommissionRepository(db *sql.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

const commissionColumns = `id, title, description, start_date, due_date, priority, state, event_project_id, team_id`

func (r *commissionRepository) CreateCommission(commission models.Commission) (models.Commission, error) {
	const query = `
		INSERT INTO eventerx.commissions (title, description, start_date, due_date, priority, state, event_project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	err := r.db.QueryRow(query,
		commission.Title,
		commission.Description,
		commission.StartDate,
		commission.DueDate,
		commission.Priority,
		string(commission.State),
		commission.EventID,
	).Scan(&commission.ID)
	if err != nil {
		return models.Commission{}, errors.Wrap(err, "creating commission")
	}
	return commission, nil
}

func (r *commissionRepository) listCommissions(query string, args ...interface{}) ([]models.Commission, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing commissions")
	}
	defer rows.Close()

	var commissions []models.Commission
	for rows.Next() {
		var (
			commission  models.Commission
			description sql.NullString
			teamID      sql.NullString
		)
		if err := rows.Scan(
			&commission.ID,
			&commission.Title,
			&description,
			&commission.StartDate,
			&commission.DueDate,
			&commission.Priority,
			&commission.State,
			&commission.EventID,
			&teamID,
		); err != nil {
			return nil, err
		}
		commission.Description = description.String
		if teamID.Valid {
			commission.TeamID = &teamID.String
		}
		commissions = append(commissions, commission)
	}

	return commissions, rows.Err()
}

func (r *commissionRepository) ListCommissionsByEvent(eventID string) ([]models.Commission, error) {
	return r.listCommissions(`
		SELECT `+commissionColumns+`
		FROM eventerx.commissions
		WHERE event_project_id = $1
		ORDER BY priority DESC, due_date;`, eventID)
}

// ListUnassignedCommissions returns the school's commissions with no
// team yet, the pool team creation draws from.
func (r *commissionRepository) ListUnassignedCommissions(schoolID string) ([]models.Commission, error) {
	return r.listCommissions(`
		SELECT c.id, c.title, c.description, c.start_date, c.due_date, c.priority, c.state, c.event_project_id, c.team_id
		FROM eventerx.commissions c
		JOIN eventerx.event_projects e ON e.id = c.event_project_id
		WHERE e.school_id = $1 AND c.team_id IS NULL
		ORDER BY c.due_date;`, schoolID)
}
