package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

// AccountRepository creates an account together with its role profile.
// Each method runs in a single transaction: either the user row and its
// profile row both exist afterwards, or neither does.
type AccountRepository interface {
	CreateStaffAccount(user models.User, staff models.StaffMember) (models.User, error)
	CreateStudentAccount(user models.User, student models.Student) (models.User, error)
	CreateAttendeeAccount(user models.User, attendee models.ExternalAttendee) (models.User, error)
	CreateSchoolAccount(user models.User, school models.School) (models.User, models.School, error)
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const insertUserQuery = `
	INSERT INTO eventerx.users (email, first_name, last_name, password_hash, role)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at;
`

func insertUser(tx *sql.Tx, user models.User) (models.User, error) {
	err := tx.QueryRow(insertUserQuery,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		int(user.Role),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "users_email_key") {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, errors.Wrap(err, "inserting user")
	}
	return user, nil
}

func (r *accountRepository) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (r *accountRepository) CreateStaffAccount(user models.User, staff models.StaffMember) (models.User, error) {
	err := r.inTx(func(tx *sql.Tx) error {
		created, err := insertUser(tx, user)
		if err != nil {
			return err
		}
		user = created

		const query = `
			INSERT INTO eventerx.staff_members (matricule, phone, user_id, school_id)
			VALUES ($1, $2, $3, $4);
		`
		if _, err := tx.Exec(query, staff.Matricule, staff.Phone, user.ID, staff.SchoolID); err != nil {
			if uniqueViolation(err, "staff_members_pkey") {
				return models.ErrDuplicateMatricule
			}
			return errors.Wrap(err, "inserting staff member")
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *accountRepository) CreateStudentAccount(user models.User, student models.Student) (models.User, error) {
	err := r.inTx(func(tx *sql.Tx) error {
		created, err := insertUser(tx, user)
		if err != nil {
			return err
		}
		user = created

		const query = `
			INSERT INTO eventerx.students (matricule, speciality, phone, class, user_id, school_id)
			VALUES ($1, $2, $3, $4, $5, $6);
		`
		_, err = tx.Exec(query,
			student.Matricule,
			student.Speciality,
			student.Phone,
			student.Class,
			user.ID,
			student.SchoolID,
		)
		if err != nil {
			if uniqueViolation(err, "students_pkey") {
				return models.ErrDuplicateMatricule
			}
			return errors.Wrap(err, "inserting student")
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *accountRepository) CreateAttendeeAccount(user models.User, attendee models.ExternalAttendee) (models.User, error) {
	err := r.inTx(func(tx *sql.Tx) error {
		created, err := insertUser(tx, user)
		if err != nil {
			return err
		}
		user = created

		const query = `
			INSERT INTO eventerx.external_attendees (phone, user_id, school_id)
			VALUES ($1, $2, $3);
		`
		if _, err := tx.Exec(query, attendee.Phone, user.ID, attendee.SchoolID); err != nil {
			return errors.Wrap(err, "inserting attendee")
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *accountRepository) CreateSchoolAccount(user models.User, school models.School) (models.User, models.School, error) {
	err := r.inTx(func(tx *sql.Tx) error {
		created, err := insertUser(tx, user)
		if err != nil {
			return err
		}
		user = created

		const query = `
			INSERT INTO eventerx.schools (email, name, address1, address2, phone, pobox, website)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at;
		`
		err = tx.QueryRow(query,
			school.Email,
			school.Name,
			school.Address1,
			school.Address2,
			school.Phone,
			school.POBox,
			school.Website,
		).Scan(&school.ID, &school.CreatedAt)
		if err != nil {
			if uniqueViolation(err, "schools_email_key") || uniqueViolation(err, "schools_name_key") {
				return models.ErrDuplicateSchool
			}
			return errors.Wrap(err, "inserting school")
		}
		return nil
	})
	if err != nil {
		return models.User{}, models.School{}, err
	}
	return user, school, nil
}
