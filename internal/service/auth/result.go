package auth

import "github.com/Freskan23/cuentascontrol/internal/domain"

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string
	User        domain.User
}
