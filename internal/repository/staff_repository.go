package repository

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/pkg/errors"
)

// StaffListing joins the staff profile with its account for roster views.
type StaffListing struct {
	Staff models.StaffMember `json:"staff"`
	User  models.User        `json:"user"`
}

type StaffRepository interface {
	GetStaffByMatricule(matricule string) (models.StaffMember, error)
	GetStaffByUserID(userID string) (models.StaffMember, error)
	ListStaffBySchool(schoolID string) ([]StaffListing, error)
	ListUnassignedStaff(schoolID string) ([]StaffListing, error)
}

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `matricule, phone, user_id, school_id, team_id, created_at`

func scanStaff(row *sql.Row) (models.StaffMember, error) {
	var (
		staff  models.StaffMember
		teamID sql.NullString
	)
	err := row.Scan(
		&staff.Matricule,
		&staff.Phone,
		&staff.UserID,
		&staff.SchoolID,
		&teamID,
		&staff.CreatedAt,
	)
	if err != nil {
		return models.StaffMember{}, err
	}
	if teamID.Valid {
		staff.TeamID = &teamID.String
	}
	return staff, nil
}

func (r *staffRepository) GetStaffByMatricule(matricule string) (models.StaffMember, error) {
	const query = `
		SELECT ` + staffColumns + `
		FROM eventerx.staff_members
		WHERE matricule = $1;
	`
	return scanStaff(r.db.QueryRow(query, matricule))
}

func (r *staffRepository) GetStaffByUserID(userID string) (models.StaffMember, error) {
	const query = `
		SELECT ` + staffColumns + `
		FROM eventerx.staff_members
		WHERE user_id = $1;
	`
	return scanStaff(r.db.QueryRow(query, userID))
}

const staffListingQuery = `
	SELECT s.matricule, s.phone, s.user_id, s.school_id, s.team_id, s.created_at,
	       u.id, u.email, u.first_name, u.last_name, u.role, u.created_at
	FROM eventerx.staff_members s
	JOIN eventerx.users u ON u.id = s.user_id
`

func (r *staffRepository) listStaff(query string, args ...interface{}) ([]StaffListing, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing staff")
	}
	defer rows.Close()

	var listings []StaffListing
	for rows.Next() {
		var (
			item   StaffListing
			teamID sql.NullString
		)
		if err := rows.Scan(
			&item.Staff.Matricule,
			&item.Staff.Phone,
			&item.Staff.UserID,
			&item.Staff.SchoolID,
			&teamID,
			&item.Staff.CreatedAt,
			&item.User.ID,
			&item.User.Email,
			&item.User.FirstName,
			&item.User.LastName,
			&item.User.Role,
			&item.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		if teamID.Valid {
			item.Staff.TeamID = &teamID.String
		}
		listings = append(listings, item)
	}

	return listings, rows.Err()
}

func (r *staffRepository) ListStaffBySchool(schoolID string) ([]StaffListing, error) {
	return r.listStaff(staffListingQuery+`
		WHERE s.school_id = $1
		ORDER BY u.last_name, u.first_name;`, schoolID)
}

// ListUnassignedStaff returns school staff with no team and no
// management role, the pool team creation draws from.
func (r *staffRepository) ListUnassignedStaff(schoolID string) ([]StaffListing, error) {
	return r.listStaff(staffListingQuery+`
		WHERE s.school_id = $1 AND s.team_id IS NULL AND u.role <> $2
		ORDER BY u.last_name, u.first_name;`, schoolID, int(models.RoleManager))
}
