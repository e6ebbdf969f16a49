package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetUserByEmail(email string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	EmailExists(email string) (bool, error)
	AuthenticateUser(email, password string) (models.User, error)
	SetUserRole(userID string, role models.Role) (models.User, error)
	DeleteUser(userID string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, role, created_at`

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	return user, err
}

func (u *userRepository) GetUserByEmail(email string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM eventerx.users
		WHERE email = $1;
	`
	return scanUser(u.db.QueryRow(query, email))
}

func (u *userRepository) GetUserByID(id string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM eventerx.users
		WHERE id = $1;
	`
	return scanUser(u.db.QueryRow(query, id))
}

func (u *userRepository) EmailExists(email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM eventerx.users WHERE email = $1);`

	var exists bool
	if err := u.db.QueryRow(query, email).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking email")
	}
	return exists, nil
}

func (u *userRepository) AuthenticateUser(email, password string) (models.User, error) {
	user, err := u.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}

	return user, nil
}

func (u *userRepository) SetUserRole(userID string, role models.Role) (models.User, error) {
	if !role.IsValid() {
		return models.User{}, errors.New("invalid role")
	}

	const query = `
		UPDATE eventerx.users
		SET role = $2
		WHERE id = $1
		RETURNING ` + userColumns + `;
	`
	return scanUser(u.db.QueryRow(query, userID, int(role)))
}

// DeleteUser removes the account row; the role profile goes with it
// via ON DELETE CASCADE.
func (u *userRepository) DeleteUser(userID string) error {
	const query = `DELETE FROM eventerx.users WHERE id = $1;`

	result, err := u.db.Exec(query, userID)
	if err != nil {
		return errors.Wrap(err, "deleting user")
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
