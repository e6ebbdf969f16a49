package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

type InvitationRepository interface {
	CreateCode(code models.InvitationCode) (models.InvitationCode, error)
	GetByCode(code string) (models.InvitationCode, error)
	GetBySchoolAndPurpose(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error)
}

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// CreateCode inserts a new invitation code. The UNIQUE constraint on
// (school_id, purpose) makes concurrent first-issuance lose cleanly:
// the loser gets ErrCodeAlreadyIssued and re-reads.
func (r *invitationRepository) CreateCode(code models.InvitationCode) (models.InvitationCode, error) {
	const query = `
		INSERT INTO eventerx.invitation_codes (code, purpose, expires_at, school_id)
		VALUES ($1, $2, $3, $4)
		RETURNING code, purpose, expires_at, school_id;
	`

	err := r.db.QueryRow(query,
		code.Code,
		string(code.Purpose),
		code.ExpiresAt,
		code.SchoolID,
	).Scan(&code.Code, &code.Purpose, &code.ExpiresAt, &code.SchoolID)
	if err != nil {
		if uniqueViolation(err, "invitation_codes_school_id_purpose_key") {
			return models.InvitationCode{}, ErrCodeAlreadyIssued
		}
		return models.InvitationCode{}, errors.Wrap(err, "creating invitation code")
	}

	return code, nil
}

// ErrCodeAlreadyIssued signals that another request issued the code
// for this (school, purpose) first.
var ErrCodeAlreadyIssued = errors.New("invitation code already issued")

func (r *invitationRepository) GetByCode(code string) (models.InvitationCode, error) {
	const query = `
		SELECT code, purpose, expires_at, school_id
		FROM eventerx.invitation_codes
		WHERE code = $1;
	`

	var invitation models.InvitationCode
	err := r.db.QueryRow(query, code).Scan(
		&invitation.Code,
		&invitation.Purpose,
		&invitation.ExpiresAt,
		&invitation.SchoolID,
	)
	return invitation, err
}

func (r *invitationRepository) GetBySchoolAndPurpose(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	const query = `
		SELECT code, purpose, expires_at, school_id
		FROM eventerx.invitation_codes
		WHERE school_id = $1 AND purpose = $2;
	`

	var invitation models.InvitationCode
	err := r.db.QueryRow(query, schoolID, string(purpose)).Scan(
		&invitation.Code,
		&invitation.Purpose,
		&invitation.ExpiresAt,
		&invitation.SchoolID,
	)
	return invitation, err
}
