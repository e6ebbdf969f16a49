package models

import "errors"

// Business-rule sentinels. Handlers map these to user-facing
// rejections; anything else is a storage fault for that request.
var (
	ErrDuplicateEmail     = errors.New("duplicate-email")
	ErrDuplicateMatricule = errors.New("duplicate-matricule")
	ErrDuplicateSchool    = errors.New("duplicate-school")
	ErrInvalidCode        = errors.New("invalid-invitation-code")
)
