package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPICharacter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters/1", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(baseCharacter())
	}))
	defer srv.Close()

	char, err := NewAPI(srv.URL).Character(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Tordek", char.Name)
	require.Len(t, char.Abilities, 1)
	assert.Equal(t, "STR", char.Abilities[0].Name)
}

func TestAPISurfacesServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Character not found"})
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).Character(context.Background(), 9)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Character not found", apiErr.Message)
}

func TestAPIFallbackErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).Character(context.Background(), 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP 502", apiErr.Message)
}

func TestAPICreateAbility(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters/1/abilities", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DEX", body["name"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 2, "name": "DEX", "score": 13})
	}))
	defer srv.Close()

	ability, err := NewAPI(srv.URL).CreateAbility(context.Background(), 1, "DEX", 13)
	require.NoError(t, err)
	assert.Equal(t, uint(2), ability.ID)
	assert.Equal(t, 13, ability.Score)
}

func TestAPIDeleteEquipment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters/1/equipment/4", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewAPI(srv.URL).DeleteEquipment(context.Background(), 1, 4))
}

func TestAPITrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters", r.URL.Path)
		json.NewEncoder(w).Encode([]Character{})
	}))
	defer srv.Close()

	chars, err := NewAPI(srv.URL + "/").ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chars)
}
