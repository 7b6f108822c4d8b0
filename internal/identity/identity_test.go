package identity

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientValidateToken(t *testing.T) {
	var gotBody credentials
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, validatePath, r.URL.Path)
		assert.Equal(t, "iam-key", r.Header.Get("api_key"))
		assert.Equal(t, "kiosk", r.Header.Get("application"))
		assert.Equal(t, "Bearer abc", r.Header.Get("authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(`{"data":{"isValid":true,"isAuthorized":false}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		ClientID:     "core",
		ClientSecret: "secret",
		APIKey:       "iam-key",
	}, nil)

	status, err := client.ValidateToken(context.Background(), "kiosk", "Bearer abc", "read_services")
	require.NoError(t, err)
	assert.True(t, status.Valid)
	assert.False(t, status.Authorized)
	assert.Equal(t, credentials{ClientID: "core", ClientSecret: "secret", ExpectedScope: "read_services"}, gotBody)
}

func TestClientServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)
	_, err := client.ValidateToken(context.Background(), "kiosk", "token", "read_services")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClientUserBasicData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userBasicDataPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"7","username":"jdoe","email":"jdoe@example.com"}}`))
	}))
	defer server.Close()

	user, err := NewClient(ClientConfig{BaseURL: server.URL}, nil).GetUserBasicData(context.Background(), "kiosk", "token")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", user.Actor())
}

func TestActorFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "a@b.c", UserBasicData{Email: "a@b.c"}.Actor())
	assert.Equal(t, "", UserBasicData{}.Actor())
}

func TestJWTServiceScopes(t *testing.T) {
	svc := NewJWTService("test-secret")
	token, err := svc.Sign(Claims{
		Scope:    "read_services write_serviceturns",
		Username: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	status, err := svc.ValidateToken(context.Background(), "kiosk", "Bearer "+token, "write_serviceturns")
	require.NoError(t, err)
	assert.Equal(t, TokenStatus{Valid: true, Authorized: true}, status)

	status, err = svc.ValidateToken(context.Background(), "kiosk", token, "write_customers")
	require.NoError(t, err)
	assert.Equal(t, TokenStatus{Valid: true}, status)

	user, err := svc.GetUserBasicData(context.Background(), "kiosk", token)
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Actor())
	assert.Equal(t, "42", user.ID)
}

func TestJWTServiceRejectsForeignSignature(t *testing.T) {
	other, err := NewJWTService("other").Sign(Claims{Scope: "read_services"})
	require.NoError(t, err)

	status, err := NewJWTService("test-secret").ValidateToken(context.Background(), "kiosk", other, "read_services")
	require.NoError(t, err)
	assert.False(t, status.Valid)
}
