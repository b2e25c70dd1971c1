package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"character-manager/core/protocol"
)

// Character is the aggregate snapshot a live view renders.
type Character struct {
	ID             uint                 `json:"id"`
	Name           string               `json:"name"`
	Race           string               `json:"race"`
	CharacterClass string               `json:"character_class"`
	Level          int                  `json:"level"`
	Abilities      []protocol.Ability   `json:"abilities"`
	Equipment      []protocol.Equipment `json:"equipment"`
}

// APIError is a non-2xx response from the resource API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// API is a client for the character resource endpoints.
type API struct {
	base string
	http *http.Client
}

// NewAPI creates an API client for the given base URL (e.g. http://localhost:8080).
func NewAPI(base string) *API {
	return &API{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// ListCharacters fetches all characters.
func (a *API) ListCharacters(ctx context.Context) ([]Character, error) {
	var out []Character
	err := a.do(ctx, http.MethodGet, "/characters", nil, &out)
	return out, err
}

// Character fetches one character aggregate.
func (a *API) Character(ctx context.Context, id uint) (*Character, error) {
	var out Character
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/characters/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCharacter creates a character.
func (a *API) CreateCharacter(ctx context.Context, name, race, characterClass string) (*Character, error) {
	body := map[string]any{"name": name, "race": race, "character_class": characterClass}
	var out Character
	if err := a.do(ctx, http.MethodPost, "/characters", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAbility adds an ability to a character.
func (a *API) CreateAbility(ctx context.Context, characterID uint, name string, score int) (*protocol.Ability, error) {
	body := map[string]any{"name": name, "score": score}
	var out protocol.Ability
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/abilities", characterID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAbility changes an ability's score.
func (a *API) UpdateAbility(ctx context.Context, characterID, abilityID uint, score int) (*protocol.Ability, error) {
	body := map[string]any{"score": score}
	var out protocol.Ability
	if err := a.do(ctx, http.MethodPut, fmt.Sprintf("/characters/%d/abilities/%d", characterID, abilityID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAbility removes an ability.
func (a *API) DeleteAbility(ctx context.Context, characterID, abilityID uint) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/characters/%d/abilities/%d", characterID, abilityID), nil, nil)
}

// CreateEquipment adds an equipment entry to a character.
func (a *API) CreateEquipment(ctx context.Context, characterID uint, name string, quantity int) (*protocol.Equipment, error) {
	body := map[string]any{"name": name, "quantity": quantity}
	var out protocol.Equipment
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/equipment", characterID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEquipment changes an equipment entry.
func (a *API) UpdateEquipment(ctx context.Context, characterID, equipmentID uint, name string, quantity int) (*protocol.Equipment, error) {
	body := map[string]any{"name": name, "quantity": quantity}
	var out protocol.Equipment
	if err := a.do(ctx, http.MethodPut, fmt.Sprintf("/characters/%d/equipment/%d", characterID, equipmentID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEquipment removes an equipment entry.
func (a *API) DeleteEquipment(ctx context.Context, characterID, equipmentID uint) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/characters/%d/equipment/%d", characterID, equipmentID), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// Surface the server's message when it sent one, "HTTP {status}" otherwise.
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
