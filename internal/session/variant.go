package session

import "fmt"

// Variant configures one application instance of the session layer. The
// storefront and the admin console differ only in these values.
type Variant struct {
	// Name keys persisted state so both variants can share a store backend
	Name string
	// RequiredRole is the role every session must carry; empty accepts any
	RequiredRole string
	// LoginPath is where an ended session is redirected
	LoginPath string
	// HomePath is where a successful login lands without a saved destination
	HomePath string
	// LoginAPIPath identifies login attempts that were not explicitly marked
	LoginAPIPath string
}

const (
	AdminRole           = "admin"
	DefaultLoginPath    = "/login"
	DefaultLoginAPIPath = "/api/auth/login"
)

// Storefront returns the customer-facing variant: any authenticated user
func Storefront() Variant {
	return Variant{
		Name:         "storefront",
		LoginPath:    DefaultLoginPath,
		HomePath:     "/account",
		LoginAPIPath: DefaultLoginAPIPath,
	}
}

// Console returns the admin console variant: sessions must carry AdminRole
func Console() Variant {
	return Variant{
		Name:         "console",
		RequiredRole: AdminRole,
		LoginPath:    DefaultLoginPath,
		HomePath:     "/admin",
		LoginAPIPath: DefaultLoginAPIPath,
	}
}

// VariantNamed returns the preset called name
func VariantNamed(name string) (Variant, error) {
	switch name {
	case Storefront().Name:
		return Storefront(), nil
	case Console().Name:
		return Console(), nil
	default:
		return Variant{}, fmt.Errorf("unknown variant %q", name)
	}
}
