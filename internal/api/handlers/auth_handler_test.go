package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

type fakeAuthDB struct {
	core.DbClient
	created *models.AdminUser
}

func (f *fakeAuthDB) CreateAdminUser(ctx context.Context, user *models.AdminUser) error {
	f.created = user
	return nil
}

func TestSignup_TokenSignedWithConfiguredSecret(t *testing.T) {
	db := &fakeAuthDB{}
	h := NewAuthHandler(db, "configured-secret")

	body, _ := json.Marshal(map[string]string{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "hunter2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, db.created)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp["token"])

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(resp["token"], claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("configured-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, db.created.ID, claims["user_id"])

	// A different secret must not verify the same token.
	_, err = jwt.Parse(resp["token"], func(t *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	require.Error(t, err)
}
