package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

// StudentListing joins the student profile with its account.
type StudentListing struct {
	Student models.Student `json:"student"`
	User    models.User    `json:"user"`
}

type StudentRepository interface {
	GetStudentByMatricule(matricule string) (models.Student, error)
	GetStudentByUserID(userID string) (models.Student, error)
	MatriculeExists(matricule string) (bool, error)
	ListStudentsBySchool(schoolID string) ([]StudentListing, error)
}

type studentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) StudentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `matricule, speciality, phone, class, user_id, school_id, created_at`

func scanStudent(row *sql.Row) (models.Student, error) {
	var (
		student    models.Student
		speciality sql.NullString
	)
	err := row.Scan(
		&student.Matricule,
		&speciality,
		&student.Phone,
		&student.Class,
		&student.UserID,
		&student.SchoolID,
		&student.CreatedAt,
	)
	if err != nil {
		return models.Student{}, err
	}
	student.Speciality = speciality.String
	return student, nil
}

func (r *studentRepository) GetStudentByMatricule(matricule string) (models.Student, error) {
	const query = `
		SELECT ` + studentColumns + `
		FROM eventerx.students
		WHERE matricule = $1;
	`
	return scanStudent(r.db.QueryRow(query, matricule))
}

func (r *studentRepository) GetStudentByUserID(userID string) (models.Student, error) {
	const query = `
		SELECT ` + studentColumns + `
		FROM eventerx.students
		WHERE user_id = $1;
	`
	return scanStudent(r.db.QueryRow(query, userID))
}

func (r *studentRepository) MatriculeExists(matricule string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM eventerx.students WHERE matricule = $1);`

	var exists bool
	if err := r.db.QueryRow(query, matricule).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking matricule")
	}
	return exists, nil
}

func (r *studentRepository) ListStudentsBySchool(schoolID string) ([]StudentListing, error) {
	const query = `
		SELECT s.matricule, s.speciality, s.phone, s.class, s.user_id, s.school_id, s.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role, u.created_at
		FROM eventerx.students s
		JOIN eventerx.users u ON u.id = s.user_id
		WHERE s.school_id = $1
		ORDER BY u.last_name, u.first_name;
	`

	rows, err := r.db.Query(query, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	defer rows.Close()

	var listings []StudentListing
	for rows.Next() {
		var (
			item       StudentListing
			speciality sql.NullString
		)
		if err := rows.Scan(
			&item.Student.Matricule,
			&speciality,
			&item.Student.Phone,
			&item.Student.Class,
			&item.Student.UserID,
			&item.Student.SchoolID,
			&item.Student.CreatedAt,
			&item.User.ID,
			&item.User.Email,
			&item.User.FirstName,
			&item.User.LastName,
			&item.User.Role,
			&item.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Student.Speciality = speciality.String
		listings = append(listings, item)
	}

	return listings, rows.Err()
}
