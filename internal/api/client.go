// Package api talks to the TitanFit backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/claude/titanfit/internal/models"
)

// ErrLoadFailed marks any failure to obtain a usable response from the backend.
// Callers show a retry affordance when errors.Is(err, ErrLoadFailed).
var ErrLoadFailed = errors.New("load failed")

// Client calls the TitanFit REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for baseURL. A zero timeout means 15 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// loadError wraps ErrLoadFailed with the backend's message when it gave one.
type loadError struct {
	op  string
	msg string
	err error
}

func (e *loadError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("api: %s: %s", e.op, e.msg)
	}
	return fmt.Sprintf("api: %s: %v", e.op, e.err)
}

func (e *loadError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrLoadFailed}
	}
	return []error{ErrLoadFailed, e.err}
}

// BackendMessage extracts the message the backend attached to a failure.
func BackendMessage(err error) string {
	var le *loadError
	if errors.As(err, &le) {
		return le.msg
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

// send executes req and decodes a 2xx body into out. An empty 2xx body leaves out untouched.
func (c *Client) send(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &loadError{op: path, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &loadError{op: path, err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &loadError{
			op:  path,
			msg: errorMessage(data),
			err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &loadError{op: path, err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// errorMessage pulls "message" or "detail" out of an error body. Validation errors shaped
// like {"email": ["already registered"]} report their first field as "email: already registered".
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		return detail
	}
	return firstFieldError(body)
}

// firstFieldError reads the first key of a JSON object in document order.
func firstFieldError(body []byte) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') || !dec.More() {
		return ""
	}
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	field, _ := tok.(string)
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return field + ": " + val
	case []any:
		if len(val) > 0 {
			return fmt.Sprintf("%s: %v", field, val[0])
		}
	}
	return ""
}

// Login authenticates a member or gym owner.
// A response with success=false is returned as-is; the caller shows its message.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchHistoryByDate returns the user's sessions on one YYYY-MM-DD day.
func (c *Client) FetchHistoryByDate(ctx context.Context, userID, day string) ([]models.Session, error) {
	path := fmt.Sprintf("/api/user/%s/history/%s/", url.PathEscape(userID), url.PathEscape(day))

	var resp models.HistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "unable to load workout history"
		}
		return nil, &loadError{op: path, msg: msg}
	}
	if resp.User == nil {
		return []models.Session{}, nil
	}
	return nonNil(resp.User.Sessions), nil
}

// FetchHistoryAll returns the user's entire session history.
func (c *Client) FetchHistoryAll(ctx context.Context, userID string) ([]models.Session, error) {
	path := fmt.Sprintf("/api/user/%s/history/", url.PathEscape(userID))

	var resp models.HistoryAllResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Sessions), nil
}

// PendingSignups lists member signups awaiting approval at one of the owner's gyms.
func (c *Client) PendingSignups(ctx context.Context, ownerID, gymID string) ([]models.PendingSignup, error) {
	path := fmt.Sprintf("/api/gym-owner/%s/gyms/%s/pending-signups/",
		url.PathEscape(ownerID), url.PathEscape(gymID))

	var resp struct {
		Requests []models.PendingSignup `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Requests == nil {
		return []models.PendingSignup{}, nil
	}
	return resp.Requests, nil
}

// DecideSignup approves or rejects a pending signup.
func (c *Client) DecideSignup(ctx context.Context, ownerID, requestID string, d models.SignupDecision) error {
	path := fmt.Sprintf("/api/gym-owner/%s/pending-signups/%s/decision/",
		url.PathEscape(ownerID), url.PathEscape(requestID))
	return c.do(ctx, http.MethodPost, path, d, nil)
}

func nonNil(s []models.Session) []models.Session {
	if s == nil {
		return []models.Session{}
	}
	return s
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is the loose check the login and signup forms apply before submitting.
func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.ToLower(strings.TrimSpace(email)))
}
