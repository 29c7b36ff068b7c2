// Package client is the Go consumer of the contacts REST API. It drives the
// session store the way the web frontend drives its auth context: every
// register/login outcome becomes a state event.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contact-keeper/internal/client/session"
	"contact-keeper/internal/client/state"
)

// ErrRequestFailed wraps any non-2xx API response; the message is the
// server-provided one (or a generic fallback).
var ErrRequestFailed = errors.New("request failed")

// Contact mirrors the API's contact representation.
type Contact struct {
	ID        string `json:"id"`
	Owner     int64  `json:"owner"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// ContactPatch is a partial update; nil fields are omitted from the request
// body and left untouched by the server.
type ContactPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Type  *string `json:"type,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

func New(baseURL string, sess *session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
	}
}

// Session exposes the underlying auth store for subscription.
func (c *Client) Session() *session.Store {
	return c.session
}

// Register submits the registration form. Empty fields and a password
// confirmation mismatch are rejected locally without contacting the server.
func (c *Client) Register(ctx context.Context, name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return c.formAlert("please enter all fields")
	}
	if password != confirm {
		return c.formAlert("passwords do not match")
	}

	_ = c.session.Dispatch(state.SubmitStarted{})

	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp, false)
	if err != nil {
		_ = c.session.Dispatch(state.AuthFailed{Message: alertMessage(err)})
		return err
	}

	_ = c.session.Dispatch(state.AuthSucceeded{Token: resp.Token})
	return c.LoadUser(ctx)
}

// Login submits the login form.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return c.formAlert("please enter all fields")
	}

	_ = c.session.Dispatch(state.SubmitStarted{})

	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth", map[string]string{
		"email":    email,
		"password": password,
	}, &resp, false)
	if err != nil {
		_ = c.session.Dispatch(state.AuthFailed{Message: alertMessage(err)})
		return err
	}

	_ = c.session.Dispatch(state.AuthSucceeded{Token: resp.Token})
	return c.LoadUser(ctx)
}

// LoadUser fetches the profile for the stored token.
func (c *Client) LoadUser(ctx context.Context) error {
	var resp struct {
		User struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth", nil, &resp, true); err != nil {
		_ = c.session.Dispatch(state.AuthFailed{Message: alertMessage(err)})
		return err
	}

	_ = c.session.Dispatch(state.UserLoaded{User: state.Profile{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
	}})
	return nil
}

// Logout clears the stored token.
func (c *Client) Logout() error {
	return c.session.Dispatch(state.LoggedOut{})
}

// ClearAlert dismisses the transient alert.
func (c *Client) ClearAlert() error {
	return c.session.Dispatch(state.AlertCleared{})
}

func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	var contacts []Contact
	if err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &contacts, true); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) CreateContact(ctx context.Context, name, email, phone, contactType string) (*Contact, error) {
	var contact Contact
	err := c.do(ctx, http.MethodPost, "/api/contacts", map[string]string{
		"name":  name,
		"email": email,
		"phone": phone,
		"type":  contactType,
	}, &contact, true)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) UpdateContact(ctx context.Context, id string, patch ContactPatch) (*Contact, error) {
	var contact Contact
	if err := c.do(ctx, http.MethodPut, "/api/contacts/"+id, patch, &contact, true); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, id string) (string, error) {
	var resp struct {
		Msg string `json:"msg"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/contacts/"+id, nil, &resp, true); err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// ExportContacts asks the server to snapshot the contact list to object storage.
func (c *Client) ExportContacts(ctx context.Context) (string, error) {
	var resp struct {
		Location string `json:"location"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/contacts/export", nil, &resp, true); err != nil {
		return "", err
	}
	return resp.Location, nil
}

// ExportObject describes one stored snapshot.
type ExportObject struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// ListExports returns the caller's past snapshots.
func (c *Client) ListExports(ctx context.Context) ([]ExportObject, error) {
	var exports []ExportObject
	if err := c.do(ctx, http.MethodGet, "/api/contacts/exports", nil, &exports, true); err != nil {
		return nil, err
	}
	return exports, nil
}

func (c *Client) formAlert(msg string) error {
	_ = c.session.Dispatch(state.FormRejected{Message: msg})
	return fmt.Errorf("%w: %s", ErrRequestFailed, msg)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.session.State().Token
		if token == "" {
			return fmt.Errorf("%w: not logged in", ErrRequestFailed)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: %s", ErrRequestFailed, apiErr.Error)
		}
		return fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// alertMessage extracts the server-provided message for display, falling back
// to a generic one for transport-level failures.
func alertMessage(err error) string {
	if errors.Is(err, ErrRequestFailed) {
		if msg := strings.TrimPrefix(err.Error(), ErrRequestFailed.Error()+": "); msg != "" {
			return msg
		}
	}
	return "something went wrong"
}
