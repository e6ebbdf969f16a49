package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

type EventRepository interface {
	CreateEvent(event models.EventProject) (models.EventProject, error)
	GetEventByID(id string) (models.EventProject, error)
	ListEventsBySchool(schoolID string) ([]models.EventProject, error)
	UpdateEvent(event models.EventProject) (models.EventProject, error)
	DeleteEvent(id string) error
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, venue, description, start_date, due_date, budget, is_active, private, school_id`

func scanEvent(row *sql.Row) (models.EventProject, error) {
	var (
		event       models.EventProject
		description sql.NullString
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Venue,
		&description,
		&event.StartDate,
		&event.DueDate,
		&event.Budget,
		&event.IsActive,
		&event.Private,
		&event.SchoolID,
	)
	if err != nil {
		return models.EventProject{}, err
	}
	event.Description = description.String
	return event, nil
}

func (r *eventRepository) CreateEvent(event models.EventProject) (models.EventProject, error) {
	const query = `
		INSERT INTO eventerx.event_projects (title, venue, description, start_date, due_date, budget, is_active, private, school_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns + `;
	`
	return scanEvent(r.db.QueryRow(query,
		event.Title,
		event.Venue,
		event.Description,
		event.StartDate,
		event.DueDate,
		event.Budget,
		event.IsActive,
		event.Private,
		event.SchoolID,
	))
}

func (r *eventRepository) GetEventByID(id string) (models.EventProject, error) {
	const query = `
		SELECT ` + eventColumns + `
		FROM eventerx.event_projects
		WHERE id = $1;
	`
	return scanEvent(r.db.QueryRow(query, id))
}

func (r *eventRepository) ListEventsBySchool(schoolID string) ([]models.EventProject, error) {
	const query = `
		SELECT ` + eventColumns + `
		FROM eventerx.event_projects
		WHERE school_id = $1
		ORDER BY start_date;
	`

	rows, err := r.db.Query(query, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "listing events")
	}
	defer rows.Close()

	var events []models.EventProject
	for rows.Next() {
		var (
			event       models.EventProject
			description sql.NullString
		)
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Venue,
			&description,
			&event.StartDate,
			&event.DueDate,
			&event.Budget,
			&event.IsActive,
			&event.Private,
			&event.SchoolID,
		); err != nil {
			return nil, err
		}
		event.Description = description.String
		events = append(events, event)
	}

	return events, rows.Err()
}

// UpdateEvent rewrites the mutable fields in place; the event keeps
// its id and school.
func (r *eventRepository) UpdateEvent(event models.EventProject) (models.EventProject, error) {
	const query = `
		UPDATE eventerx.event_projects
		SET title = $2, venue = $3, description = $4, start_date = $5,
		    due_date = $6, budget = $7, is_active = $8, private = $9
		WHERE id = $1
		RETURNING ` + eventColumns + `;
	`
	return scanEvent(r.db.QueryRow(query,
		event.ID,
		event.Title,
		event.Venue,
		event.Description,
		event.StartDate,
		event.DueDate,
		event.Budget,
		event.IsActive,
		event.Private,
	))
}

func (r *eventRepository) DeleteEvent(id string) error {
	const query = `DELETE FROM eventerx.event_projects WHERE id = $1;`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return errors.Wrap(err, "deleting event")
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
