package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyAdminClaims = "admin_claims"
	KeyIsAdmin     = "isAdmin"
)
