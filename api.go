package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// board and list are read-only reference data scoped to one user. The service
// exposes Mongo-style `_id` identifiers.
type board struct {
	ID        flexID `json:"_id"`
	BoardName string `json:"boardName"`
}

type list struct {
	ID       flexID `json:"_id"`
	ListName string `json:"listName"`
	BoardID  flexID `json:"boardId"`
}

// jobDates is the lifecycle scaffold stamped onto a new job record. Only
// Created is set at submission time; the rest is filled in later by the
// tracking service as the application progresses.
type jobDates struct {
	Created    string   `json:"created"`
	Applied    *string  `json:"applied"`
	Interviews []string `json:"interviews"`
	Offer      *string  `json:"offer"`
	Rejected   *string  `json:"rejected"`
}

// jobRecord is the finalized submission payload. UserID is injected from the
// current session immediately before the POST, overwriting whatever the draft
// carried.
type jobRecord struct {
	ID             flexID   `json:"_id,omitempty"`
	CompanyName    string   `json:"companyName"`
	RoleName       string   `json:"roleName"`
	Domain         string   `json:"domain"`
	JobURL         string   `json:"jobURL"`
	JobDescription string   `json:"jobDescription"`
	WorkLocation   string   `json:"workLocation"`
	WorkModel      string   `json:"workModel"`
	Notes          string   `json:"notes"`
	ListID         string   `json:"listId"`
	BoardID        string   `json:"boardId"`
	Date           jobDates `json:"date"`
	Starred        bool     `json:"starred"`
	UserID         string   `json:"userId"`
}

// statusError reports a non-2xx response from the tracking service.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status: %d", e.Code)
}

type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &apiClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a session. The session store is only written
// by the caller after this returns successfully, so a failed login never
// leaves a partial session behind.
func (c *apiClient) Login(ctx context.Context, email, password string) (session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return session{}, fmt.Errorf("failed to marshal login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewBuffer(body))
	if err != nil {
		return session{}, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return session{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return session{}, &statusError{Code: resp.StatusCode}
	}

	var sess session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return session{}, fmt.Errorf("failed to decode login response: %w", err)
	}
	if !sess.valid() {
		return session{}, fmt.Errorf("login response missing userId or authToken")
	}
	return sess, nil
}

// FetchBoards loads the user's boards. No caching: every popup activation
// re-fetches.
func (c *apiClient) FetchBoards(ctx context.Context, userID, authToken string) ([]board, error) {
	var boards []board
	if err := c.getJSON(ctx, "/api/boards", userID, authToken, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// FetchLists loads all of the user's lists across boards; the cascade resolver
// narrows them to the selected board.
func (c *apiClient) FetchLists(ctx context.Context, userID, authToken string) ([]list, error) {
	var lists []list
	if err := c.getJSON(ctx, "/api/lists", userID, authToken, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateJob posts a finished job record and returns the created record.
func (c *apiClient) CreateJob(ctx context.Context, authToken string, rec jobRecord) (jobRecord, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return jobRecord{}, fmt.Errorf("failed to marshal job record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/jobs", bytes.NewBuffer(body))
	if err != nil {
		return jobRecord{}, fmt.Errorf("failed to create job request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return jobRecord{}, fmt.Errorf("job request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return jobRecord{}, &statusError{Code: resp.StatusCode}
	}

	var created jobRecord
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return jobRecord{}, fmt.Errorf("failed to decode job response: %w", err)
	}
	return created, nil
}

func (c *apiClient) getJSON(ctx context.Context, path, userID, authToken string, out interface{}) error {
	endpoint := c.baseURL + path + "?userId=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{Code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
