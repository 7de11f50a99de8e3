// Package console holds the operator's session with the infusion platform
// API: connection settings, the held bearer token, the selected drug and
// the last output of every action. Each action is one request through the
// transport client.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"infusionconsole/internal/apiclient"
	"infusionconsole/internal/auth"
)

const defaultAuditLimit = 50

var ErrBusy = errors.New("action already in progress")

// RequestError is an API call that did not succeed. Status is zero when no
// response was received. Kind is apiclient.KindAuth when no request was sent
// because a token could not be issued.
type RequestError struct {
	Kind    apiclient.Kind
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	status := "?"
	if e.Status != 0 {
		status = strconv.Itoa(e.Status)
	}
	return fmt.Sprintf("HTTP %s: %s", status, e.Message)
}

type Console struct {
	raw    apiclient.Requester
	authed apiclient.Requester
	tokens *auth.TokenCache
	state  *State
	logger *slog.Logger
}

// New builds a Console. raw is used as is for anonymous calls; authenticated
// calls go through a token decorator around it backed by tokens.
func New(raw apiclient.Requester, tokens *auth.TokenCache, state *State, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Console{
		raw:    raw,
		authed: auth.NewAuthenticated(raw, tokens),
		tokens: tokens,
		state:  state,
		logger: logger,
	}
}

func (c *Console) State() *State {
	return c.state
}

func (c *Console) Snapshot() Snapshot {
	snap := c.state.snapshot()
	id := c.tokens.Identity()
	snap.Subject = id.Subject
	snap.Roles = id.Roles
	snap.TokenHeld = c.tokens.Current() != ""
	return snap
}

// Settings changes connection and identity values. Nil fields are left alone.
type Settings struct {
	BaseURL *string `json:"base_url"`
	Subject *string `json:"subject"`
	Roles   *string `json:"roles"`
	Secret  *string `json:"secret"`
	Token   *string `json:"token"`
	Tab     *Tab    `json:"tab"`
}

func (c *Console) Apply(s Settings) {
	if s.BaseURL != nil {
		c.state.SetBaseURL(strings.TrimSpace(*s.BaseURL))
	}
	if s.Subject != nil || s.Roles != nil || s.Secret != nil {
		id := c.tokens.Identity()
		if s.Subject != nil {
			id.Subject = *s.Subject
		}
		if s.Roles != nil {
			id.Roles = auth.ParseRoles(*s.Roles)
		}
		if s.Secret != nil {
			id.Secret = *s.Secret
		}
		c.tokens.SetIdentity(id)
	}
	if s.Token != nil {
		c.tokens.Set(strings.TrimSpace(*s.Token))
	}
	if s.Tab != nil {
		c.state.SetActiveTab(*s.Tab)
	}
}

// runAction executes fn as the action named key and records its rendered
// output, or "Error: ..." when it fails.
func runAction[T any](c *Console, key string, fn func() (T, error)) (T, error) {
	var zero T
	if !c.state.begin(key) {
		return zero, ErrBusy
	}
	out, err := fn()
	if err != nil {
		c.logger.Warn("console action failed", "action", key, "err", err)
		c.state.finish(key, "Error: "+err.Error())
		return zero, err
	}
	c.state.finish(key, pretty(out))
	return out, nil
}

func pretty(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return s
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// call performs an authenticated request and decodes a success into T.
func call[T any](ctx context.Context, c *Console, method apiclient.Method, path string, body any) (T, error) {
	res := apiclient.As[T](c.authed.Do(ctx, apiclient.Request{
		BaseURL: c.state.BaseURL(),
		Path:    path,
		Method:  method,
		Body:    body,
	}))
	if f := res.Err(); f != nil {
		var zero T
		return zero, &RequestError{Kind: f.Kind, Status: f.StatusCode, Message: f.Message}
	}
	return res.Data(), nil
}

func idPath(prefix, id string, suffix ...string) string {
	p := prefix + url.PathEscape(strings.TrimSpace(id))
	for _, s := range suffix {
		p += s
	}
	return p
}

type TokenInfo struct {
	TokenGenerated bool      `json:"token_generated"`
	Subject        string    `json:"subject"`
	Roles          []string  `json:"roles"`
	ExpiresAt      time.Time `json:"expires_at"`
	ExpiresIn      string    `json:"expires_in"`
}

// GenerateToken signs a fresh token for the current identity and holds it.
func (c *Console) GenerateToken(ctx context.Context) (*TokenInfo, error) {
	return runAction(c, "auth", func() (*TokenInfo, error) {
		tok, id, err := c.tokens.Refresh()
		if err != nil {
			return nil, err
		}
		return describe(tok, id.Secret)
	})
}

// InspectToken describes the held token without issuing one.
func (c *Console) InspectToken() (*TokenInfo, error) {
	tok := c.tokens.Current()
	if tok == "" {
		return &TokenInfo{}, nil
	}
	return describe(tok, c.tokens.Identity().Secret)
}

func describe(tok, secret string) (*TokenInfo, error) {
	claims, err := auth.ParseToken(tok, secret)
	if err != nil {
		return nil, fmt.Errorf("held token: %w", err)
	}
	info := &TokenInfo{
		TokenGenerated: true,
		Subject:        claims.Subject,
		Roles:          claims.Roles,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.ExpiresIn = humanize.Time(claims.ExpiresAt.Time)
	}
	return info, nil
}

type HealthStatus struct {
	Status string `json:"status"`
}

// CheckHealth calls /health anonymously. It never issues a token.
func (c *Console) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	return runAction(c, "health", func() (*HealthStatus, error) {
		res := apiclient.As[HealthStatus](c.raw.Do(ctx, apiclient.Request{
			BaseURL: c.state.BaseURL(),
			Path:    "/health",
			Method:  apiclient.MethodGet,
			Token:   "",
		}))
		if f := res.Err(); f != nil {
			c.state.setHealth("down")
			return nil, errors.New(f.Message)
		}
		h := res.Data()
		c.state.setHealth(h.Status)
		return &h, nil
	})
}
