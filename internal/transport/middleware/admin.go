package middleware

import (
	"context"

	"github.com/Freskan23/cuentascontrol/internal/domain"
	"github.com/Freskan23/cuentascontrol/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrForbidden if the context user is not an
// admin. Use inside handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	role, ok := ctxutil.RoleFromCtx(ctx)
	if !ok || domain.Role(role) != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
