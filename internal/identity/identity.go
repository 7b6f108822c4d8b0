// Package identity talks to the identity service that owns tokens, scopes and
// user records.
package identity

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("identity service unavailable")

// TokenStatus is the outcome of validating a token against a scope.
type TokenStatus struct {
	Valid      bool
	Authorized bool
}

type UserBasicData struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// Actor is the name recorded in the audit columns for writes made by the user.
func (u UserBasicData) Actor() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

type Service interface {
	ValidateToken(ctx context.Context, application, authorization, expectedScope string) (TokenStatus, error)
	GetUserBasicData(ctx context.Context, application, authorization string) (UserBasicData, error)
}

// AllowAll accepts every token. It backs IDENTITY_MODE=none for local runs.
type AllowAll struct{}

func (AllowAll) ValidateToken(context.Context, string, string, string) (TokenStatus, error) {
	return TokenStatus{Valid: true, Authorized: true}, nil
}

func (AllowAll) GetUserBasicData(context.Context, string, string) (UserBasicData, error) {
	return UserBasicData{}, nil
}
