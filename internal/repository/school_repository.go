package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

type SchoolRepository interface {
	GetSchoolByID(id string) (models.School, error)
	GetSchoolByEmail(email string) (models.School, error)
	SchoolNameExists(name string) (bool, error)
	ListSchools() ([]models.School, error)
	DeleteSchool(id string) error
}

type schoolRepository struct {
	db *sql.DB
}

func NewSchoolRepository(db *sql.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

const schoolColumns = `id, email, name, address1, address2, phone, pobox, website, created_at`

func scanSchool(row *sql.Row) (models.School, error) {
	var (
		school   models.School
		address2 sql.NullString
		pobox    sql.NullString
		website  sql.NullString
	)
	err := row.Scan(
		&school.ID,
		&school.Email,
		&school.Name,
		&school.Address1,
		&address2,
		&school.Phone,
		&pobox,
		&website,
		&school.CreatedAt,
	)
	if err != nil {
		return models.School{}, err
	}
	school.Address2 = address2.String
	school.POBox = pobox.String
	school.Website = website.String
	return school, nil
}

func (r *schoolRepository) GetSchoolByID(id string) (models.School, error) {
	const query = `
		SELECT ` + schoolColumns + `
		FROM eventerx.schools
		WHERE id = $1;
	`
	return scanSchool(r.db.QueryRow(query, id))
}

func (r *schoolRepository) GetSchoolByEmail(email string) (models.School, error) {
	const query = `
		SELECT ` + schoolColumns + `
		FROM eventerx.schools
		WHERE email = $1;
	`
	return scanSchool(r.db.QueryRow(query, email))
}

func (r *schoolRepository) SchoolNameExists(name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM eventerx.schools WHERE name = $1);`

	var exists bool
	if err := r.db.QueryRow(query, name).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking school name")
	}
	return exists, nil
}

func (r *schoolRepository) ListSchools() ([]models.School, error) {
	const query = `
		SELECT ` + schoolColumns + `
		FROM eventerx.schools
		ORDER BY name;
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "listing schools")
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var (
			school   models.School
			address2 sql.NullString
			pobox    sql.NullString
			website  sql.NullString
		)
		if err := rows.Scan(
			&school.ID,
			&school.Email,
			&school.Name,
			&school.Address1,
			&address2,
			&school.Phone,
			&pobox,
			&website,
			&school.CreatedAt,
		); err != nil {
			return nil, err
		}
		school.Address2 = address2.String
		school.POBox = pobox.String
		school.Website = website.String
		schools = append(schools, school)
	}

	return schools, rows.Err()
}

// DeleteSchool removes the school row; ON DELETE CASCADE takes the
// owned users' profiles, events, teams and invitation codes with it.
func (r *schoolRepository) DeleteSchool(id string) error {
	const query = `DELETE FROM eventerx.schools WHERE id = $1;`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return errors.Wrap(err, "deleting school")
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
