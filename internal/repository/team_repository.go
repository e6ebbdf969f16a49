package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

type TeamRepository interface {
	// CreateTeamWithAssignments inserts the team and assigns the given
	// staff members and commissions to it in one transaction. Any
	// unknown matricule, commission, or cross-school reference aborts
	// the whole creation.
	CreateTeamWithAssignments(team models.Team, matricules []string, commissionIDs []string) (models.Team, error)
	GetTeamByID(id string) (models.Team, error)
	ListTeamsBySchool(schoolID string) ([]models.Team, error)
	DeleteTeam(id string) error
}

// ErrInvalidAssignment reports a member or commission that cannot be
// assigned to the team being created.
var ErrInvalidAssignment = errors.New("invalid team assignment")

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateTeamWithAssignments(team models.Team, matricules []string, commissionIDs []string) (models.Team, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return models.Team{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	const insertTeam = `
		INSERT INTO eventerx.teams (title, school_id)
		VALUES ($1, $2)
		RETURNING id, title, school_id, created_at;
	`
	err = tx.QueryRow(insertTeam, team.Title, team.SchoolID).Scan(
		&team.ID, &team.Title, &team.SchoolID, &team.CreatedAt,
	)
	if err != nil {
		return models.Team{}, errors.Wrap(err, "inserting team")
	}

	// Only unassigned members of the same school may join.
	const assignMember = `
		UPDATE eventerx.staff_members
		SET team_id = $1
		WHERE matricule = $2 AND school_id = $3 AND team_id IS NULL;
	`
	for _, matricule := range matricules {
		result, err := tx.Exec(assignMember, team.ID, matricule, team.SchoolID)
		if err != nil {
			return models.Team{}, errors.Wrap(err, "assigning staff member")
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return models.Team{}, err
		}
		if affected == 0 {
			return models.Team{}, ErrInvalidAssignment
		}
	}

	// Commissions must be unassigned and belong to one of the school's
	// events.
	const assignCommission = `
		UPDATE eventerx.commissions c
		SET team_id = $1
		FROM eventerx.event_projects e
		WHERE c.id = $2 AND c.team_id IS NULL
		  AND e.id = c.event_project_id AND e.school_id = $3;
	`
	for _, commissionID := range commissionIDs {
		result, err := tx.Exec(assignCommission, team.ID, commissionID, team.SchoolID)
		if err != nil {
			return models.Team{}, errors.Wrap(err, "assigning commission")
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return models.Team{}, err
		}
		if affected == 0 {
			return models.Team{}, ErrInvalidAssignment
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Team{}, errors.Wrap(err, "committing transaction")
	}
	return team, nil
}

func (r *teamRepository) GetTeamByID(id string) (models.Team, error) {
	const query = `
		SELECT id, title, school_id, created_at
		FROM eventerx.teams
		WHERE id = $1;
	`

	var team models.Team
	err := r.db.QueryRow(query, id).Scan(&team.ID, &team.Title, &team.SchoolID, &team.CreatedAt)
	return team, err
}

func (r *teamRepository) ListTeamsBySchool(schoolID string) ([]models.Team, error) {
	const query = `
		SELECT id, title, school_id, created_at
		FROM eventerx.teams
		WHERE school_id = $1
		ORDER BY created_at;
	`

	rows, err := r.db.Query(query, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "listing teams")
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Title, &team.SchoolID, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// DeleteTeam removes the team; members and commissions fall back to
// unassigned via ON DELETE SET NULL.
func (r *teamRepository) DeleteTeam(id string) error {
	const query = `DELETE FROM eventerx.teams WHERE id = $1;`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return errors.Wrap(err, "deleting team")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
