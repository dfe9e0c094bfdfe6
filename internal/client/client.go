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

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// MsgKitchenProblem is shown when the server gives no usable error message.
const MsgKitchenProblem = "Naku, may problema sa kusina."

const generatePath = "/api/generate-recipe"

// APIError is a non-2xx answer from the generation endpoint
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation failed with status %d: %s", e.StatusCode, e.Message)
}

// NetworkError means the endpoint could not be reached or answered with an
// unreadable body.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("recipe service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RecipeAPI generates recipes through the HTTP endpoint
type RecipeAPI interface {
	GenerateRecipe(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error)
}

// HTTPClient calls a remote anong-ulam server
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the server at baseURL. A nil httpClient
// uses one with a 60s timeout.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GenerateRecipe posts one generation request
func (c *HTTPClient) GenerateRecipe(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error) {
	body, err := json.Marshal(types.RecipeRequest{Ingredients: ingredients, Mood: string(mood)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload types.ErrorResponse
		_ = json.Unmarshal(data, &payload)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	var recipe types.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to decode recipe: %w", err)}
	}
	return &recipe, nil
}
