package service

import (
	"github.com/yvoloshyn/contactsgo/internal/domain"
	apperrors "github.com/yvoloshyn/contactsgo/pkg/errors"
)

// Authorize checks a resolved user against an allow-list of roles. An
// unresolved user is unauthenticated; a resolved user outside the list is
// forbidden.
func Authorize(user *domain.User, allowed ...domain.Role) error {
	if user == nil {
		return apperrors.Unauthenticated()
	}
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden("insufficient role")
}
