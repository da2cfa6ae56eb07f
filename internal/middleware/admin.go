package middleware

import (
	"vestra/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired lets ADMIN and SUPERADMIN tokens through. The settlement
// engine re-checks the role against the database on every command.
func AdminRequired() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}
