package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:    srv.URL,
		ServiceKey: "test-key",
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresConfiguration(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestClient_RegisterSuccess(t *testing.T) {
	var gotPayload map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"u1"}`))
	})

	res, err := c.Register(context.Background(), Registration{
		Email:    "ana@x.com",
		Password: "Secret123456",
		FullName: "Ana",
		Role:     "master",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	meta := gotPayload["data"].(map[string]interface{})
	assert.Equal(t, "Ana", meta["full_name"])
	assert.Equal(t, "master", meta["role"])
}

func TestClient_RegisterRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg":"User already registered"}`))
	})

	res, err := c.Register(context.Background(), Registration{
		Email:    "ana@x.com",
		Password: "Secret123456",
		FullName: "Ana",
		Role:     "lider",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "El correo electrónico ya está registrado.", res.Error)
}

func TestClient_RegisterMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be called")
	})

	res, err := c.Register(context.Background(), Registration{Email: "ana@x.com"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "requeridos")
}

func TestClient_RegisterUnreachable(t *testing.T) {
	c, err := NewClient(Config{
		BaseURL:    "http://127.0.0.1:1",
		ServiceKey: "k",
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = c.Register(context.Background(), Registration{
		Email:    "ana@x.com",
		Password: "Secret123456",
	})
	assert.Error(t, err)
}
