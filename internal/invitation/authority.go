// Package invitation issues and validates the time-boxed codes that
// gate staff, student and attendee self-registration.
package invitation

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
	"github.com/pkg/errors"
)

// DefaultTTL is how long a freshly issued code stays redeemable.
const DefaultTTL = 31 * 24 * time.Hour

// tokenBytes of entropy, hex encoded to twice as many characters.
const tokenBytes = 8

// Authority owns the invitation-code lifecycle. Codes are issued at
// most once per (school, purpose) and never rotated; expiry is logical,
// checked on read, never purged.
type Authority struct {
	repo repository.InvitationRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthority(repo repository.InvitationRepository) *Authority {
	return &Authority{repo: repo, ttl: DefaultTTL, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	a.now = now
	return a
}

// IssueOrReuse returns the school's code for the purpose, creating one
// on first request. An existing code is returned unchanged even when
// it has already expired. Two concurrent first issuances are resolved
// by the (school_id, purpose) unique constraint: the losing insert
// re-reads and returns the winner's code.
func (a *Authority) IssueOrReuse(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	if !purpose.IsValid() {
		return models.InvitationCode{}, errors.Errorf("unknown invite purpose %q", purpose)
	}

	existing, err := a.repo.GetBySchoolAndPurpose(schoolID, purpose)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.InvitationCode{}, errors.Wrap(err, "looking up invitation code")
	}

	token, err := generateToken()
	if err != nil {
		return models.InvitationCode{}, errors.Wrap(err, "generating invitation token")
	}

	created, err := a.repo.CreateCode(models.InvitationCode{
		Code:      token,
		Purpose:   purpose,
		ExpiresAt: a.now().Add(a.ttl).Unix(),
		SchoolID:  schoolID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCodeAlreadyIssued) {
			return a.repo.GetBySchoolAndPurpose(schoolID, purpose)
		}
		return models.InvitationCode{}, err
	}

	return created, nil
}

// Validate resolves a submitted token to its school and purpose.
// Unknown and expired codes both come back as models.ErrInvalidCode;
// the caller cannot tell the two apart, matching the registration
// pages which 404 either way.
func (a *Authority) Validate(code string) (models.InvitationCode, error) {
	invitation, err := a.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InvitationCode{}, models.ErrInvalidCode
		}
		return models.InvitationCode{}, errors.Wrap(err, "looking up invitation code")
	}

	if !invitation.ValidOn(a.now()) {
		return models.InvitationCode{}, models.ErrInvalidCode
	}

	return invitation, nil
}

// ActiveCode returns the school's unexpired code for the purpose, the
// precondition registration checks and the value the roster pages turn
// into invite links. No code, or an expired one, yields
// models.ErrInvalidCode.
func (a *Authority) ActiveCode(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	invitation, err := a.repo.GetBySchoolAndPurpose(schoolID, purpose)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InvitationCode{}, models.ErrInvalidCode
		}
		return models.InvitationCode{}, errors.Wrap(err, "looking up invitation code")
	}

	if !invitation.ValidOn(a.now()) {
		return models.InvitationCode{}, models.ErrInvalidCode
	}

	return invitation, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
