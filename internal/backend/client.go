// Package backend talks to the university API that owns all durable
// student/lecturer/lecture state and does the actual credential checks.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrUpstream = errors.New("backend error")

// Error carries the upstream's user-facing message. The original client
// shows the backend's msg verbatim, so Error() is just that message.
type Error struct {
	Route string
	Msg   string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return ErrUpstream }

type Client struct {
	endpoint    string
	functionKey string
	http        *http.Client
}

func NewClient(endpoint, functionKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:    endpoint,
		functionKey: functionKey,
		http:        &http.Client{Timeout: timeout},
	}
}

// Account is the student/lecturer record the backend returns on login.
type Account struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Modules []string `json:"modules"`
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Result   bool     `json:"result"`
	Msg      string   `json:"msg"`
	Student  *Account `json:"student"`
	Lecturer *Account `json:"lecturer"`
}

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type registration struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Modules  []string `json:"modules"`
}

type lectureBooking struct {
	Title    string `json:"title"`
	Module   string `json:"module"`
	Lecturer string `json:"lecturer"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

func (c *Client) StudentLogin(ctx context.Context, name, password string) (*Account, error) {
	env, err := c.post(ctx, "student/login", credentials{Name: name, Password: password})
	if err != nil {
		return nil, err
	}
	if env.Student == nil {
		// A success envelope without the account record is a broken
		// backend reply, not a login.
		log.Error().Str("module", "backend").Str("route", "student/login").Msg("success reply missing student record")
		return nil, &Error{Route: "student/login", Msg: "API_ERROR"}
	}
	return env.Student, nil
}

func (c *Client) StudentEnroll(ctx context.Context, name, password string, modules []string) error {
	_, err := c.post(ctx, "student/enroll", registration{Name: name, Password: password, Modules: modules})
	return err
}

func (c *Client) LecturerLogin(ctx context.Context, name, password string) (*Account, error) {
	env, err := c.post(ctx, "lecturer/login", credentials{Name: name, Password: password})
	if err != nil {
		return nil, err
	}
	if env.Lecturer == nil {
		log.Error().Str("module", "backend").Str("route", "lecturer/login").Msg("success reply missing lecturer record")
		return nil, &Error{Route: "lecturer/login", Msg: "API_ERROR"}
	}
	return env.Lecturer, nil
}

func (c *Client) LecturerHire(ctx context.Context, name, password string, modules []string) error {
	_, err := c.post(ctx, "lecturer/hire", registration{Name: name, Password: password, Modules: modules})
	return err
}

// MakeLecture books the lecture with the backend of record before the
// relay announces it.
func (c *Client) MakeLecture(ctx context.Context, title, module, lecturer, date, timeOfDay string) error {
	_, err := c.post(ctx, "lecture/make", lectureBooking{
		Title: title, Module: module, Lecturer: lecturer, Date: date, Time: timeOfDay,
	})
	return err
}

func (c *Client) post(ctx context.Context, route string, payload any) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", route, err)
	}

	u := fmt.Sprintf("%s/%s?code=%s", c.endpoint, route, url.QueryEscape(c.functionKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", route, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("module", "backend").Str("route", route).Msg("backend unreachable")
		return nil, &Error{Route: route, Msg: "API_ERROR"}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Error().Err(err).Str("module", "backend").Str("route", route).Msg("bad backend response")
		return nil, &Error{Route: route, Msg: "API_ERROR"}
	}
	if !env.Result {
		msg := env.Msg
		if msg == "" {
			msg = "request failed"
		}
		return nil, &Error{Route: route, Msg: msg}
	}
	return &env, nil
}
