package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/common"
)

// errorBody mirrors the server's error response.
type errorBody struct {
	Error string      `json:"error"`
	Kind  access.Kind `json:"kind"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(models.TokenPair)
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetTokens(t models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = t.AccessToken
	c.refreshToken = t.RefreshToken
}

func (c *HTTPClient) Tokens() models.TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.TokenPair{AccessToken: c.accessToken, RefreshToken: c.refreshToken}
}

func (c *HTTPClient) OnTokens(fn func(models.TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

func (c *HTTPClient) storeTokens(t models.TokenPair) {
	c.mu.Lock()
	c.accessToken = t.AccessToken
	c.refreshToken = t.RefreshToken
	fn := c.onTokens
	c.mu.Unlock()

	if fn != nil {
		fn(t)
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request. When authed is set the access token is attached and
// a 401 "token expired" answer triggers one refresh and a retry.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	err := c.send(ctx, method, path, in, out, authed)
	if !authed || !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	if c.Tokens().RefreshToken == "" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return rerr
	}

	return c.send(ctx, method, path, in, out, authed)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Tokens().AccessToken; token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError turns an error response into an error matching the common
// sentinels, and ErrTokenExpired for an expired access token.
func mapError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		switch eb.Error {
		case common.ErrTokenExpired.Error():
			return common.ErrTokenExpired
		case common.ErrRefreshTokenExpired.Error():
			return common.ErrRefreshTokenExpired
		}
	}

	kind := eb.Kind
	if kind == "" {
		kind = kindForStatus(resp.StatusCode)
	}
	return &access.Error{Kind: kind, Msg: eb.Error}
}

func kindForStatus(code int) access.Kind {
	switch code {
	case http.StatusNotFound:
		return access.NotFound
	case http.StatusForbidden:
		return access.Forbidden
	case http.StatusConflict:
		return access.Conflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return access.Invalid
	case http.StatusUnauthorized:
		return access.Unauthenticated
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return access.Unavailable
	default:
		return access.Internal
	}
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + strconv.FormatInt(id, 10) + suffix
}

// --- auth ---

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil, false)
}

func (c *HTTPClient) Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error) {
	in := map[string]string{"email": email, "firstName": firstName, "lastName": lastName, "password": password}
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var res models.LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &res, false); err != nil {
		return nil, err
	}
	c.storeTokens(res.TokenPair)
	return &res, nil
}

// Refresh rotates the token pair using the stored refresh token.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	rt := c.Tokens().RefreshToken
	if rt == "" {
		return ErrUnauthorized
	}

	var pair models.TokenPair
	in := map[string]string{"refreshToken": rt}
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", in, &pair, false); err != nil {
		return err
	}
	c.storeTokens(pair)
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- files ---

func (c *HTTPClient) CreateUpload(ctx context.Context, f models.NewFile) (*models.Upload, error) {
	var up models.Upload
	if err := c.do(ctx, http.MethodPost, "/api/files/upload", f, &up, true); err != nil {
		return nil, err
	}
	return &up, nil
}

func (c *HTTPClient) ListOwned(ctx context.Context, _ access.Session) ([]access.File, error) {
	var files []access.File
	err := c.do(ctx, http.MethodGet, "/api/files/my-files", nil, &files, true)
	return files, err
}

func (c *HTTPClient) ListPublic(ctx context.Context, _ access.Session) ([]access.File, error) {
	var files []access.File
	err := c.do(ctx, http.MethodGet, "/api/files/public", nil, &files, true)
	return files, err
}

func (c *HTTPClient) ListOthersPrivate(ctx context.Context, _ access.Session) ([]access.FileView, error) {
	var views []access.FileView
	err := c.do(ctx, http.MethodGet, "/api/private-files/others", nil, &views, true)
	return views, err
}

func (c *HTTPClient) QuickCheck(ctx context.Context, fileID int64) (*models.QuickCheck, error) {
	var qc models.QuickCheck
	if err := c.do(ctx, http.MethodGet, idPath("/api/private-files/", fileID, "/quick-check"), nil, &qc, true); err != nil {
		return nil, err
	}
	return &qc, nil
}

func (c *HTTPClient) DownloadURL(ctx context.Context, fileID int64) (*models.Download, error) {
	var dl models.Download
	if err := c.do(ctx, http.MethodGet, idPath("/api/files/download/", fileID, ""), nil, &dl, true); err != nil {
		return nil, err
	}
	return &dl, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/files/", fileID, ""), nil, nil, true)
}

// --- access requests ---

func (c *HTTPClient) CreateRequest(ctx context.Context, _ access.Session, fileID int64, message string) (*access.AccessRequest, error) {
	in := map[string]any{"fileId": fileID, "message": message}
	var out access.AccessRequest
	if err := c.do(ctx, http.MethodPost, "/api/requests", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListReceived(ctx context.Context, _ access.Session) ([]access.AccessRequest, error) {
	var out []access.AccessRequest
	err := c.do(ctx, http.MethodGet, "/api/requests/received", nil, &out, true)
	return out, err
}

func (c *HTTPClient) ListSent(ctx context.Context, _ access.Session) ([]access.AccessRequest, error) {
	var out []access.AccessRequest
	err := c.do(ctx, http.MethodGet, "/api/requests/sent", nil, &out, true)
	return out, err
}

func (c *HTTPClient) SetStatus(ctx context.Context, _ access.Session, requestID int64, status access.RequestStatus) (*access.AccessRequest, error) {
	in := map[string]string{"status": string(status)}
	var out access.AccessRequest
	if err := c.do(ctx, http.MethodPut, idPath("/api/requests/", requestID, ""), in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteRequest(ctx context.Context, _ access.Session, requestID int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/requests/", requestID, ""), nil, nil, true)
}
