package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/client/models"
	"github.com/dbelyakov/invoicekeeper/internal/common"
)

const requestTimeout = 15 * time.Second

// HTTPClient talks JSON over HTTP to the InvoiceKeeper API. The token pair
// obtained at login is injected into every request and rotated in place when
// the server reports an expired access token.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewHTTPClient validates the endpoint URL and returns a ready client.
func NewHTTPClient(endpointURL string) (*HTTPClient, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint URL %q", endpointURL)
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(endpointURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type createInvoiceRequest struct {
	FilePath string             `json:"file_path"`
	Fields   map[string]*string `json:"fields,omitempty"`
}

type updateInvoiceRequest struct {
	ID     int64              `json:"id"`
	Fields map[string]*string `json:"fields"`
}

type invoiceIDRequest struct {
	ID int64 `json:"id"`
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

type loginEnvelope struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type tokensEnvelope struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type invoiceEnvelope struct {
	Invoice *models.Invoice `json:"invoice"`
}

type invoicesEnvelope struct {
	Invoices []*models.Invoice `json:"invoices"`
}

type uploadURLEnvelope struct {
	FilePath  string `json:"file_path"`
	UploadURL string `json:"upload_url"`
}

type urlEnvelope struct {
	URL string `json:"url"`
}

type healthEnvelope struct {
	Status string `json:"status"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (c *HTTPClient) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *HTTPClient) currentRefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// send performs a single HTTP exchange. A 2xx body is decoded into out; for
// anything else the server's error message is returned alongside the status.
// The returned error covers transport and decoding failures only.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, in, out any) (int, string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, "", err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, "", err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerSchemePrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, "", fmt.Errorf("decoding response: %w", err)
			}
		}
		return resp.StatusCode, "", nil
	}

	var apiErr errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		apiErr.Error = resp.Status
	}
	return resp.StatusCode, apiErr.Error, nil
}

// call performs one API request, decoding a 2xx response envelope into out.
// When the server reports an expired access token and a refresh token is on
// hand, the pair is rotated once and the original request replayed.
func (c *HTTPClient) call(ctx context.Context, method, path string, query url.Values, in, out any) error {
	status, message, err := c.send(ctx, method, path, query, in, out)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && message == common.ErrTokenExpired.Error() && c.currentRefreshToken() != "" {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		status, message, err = c.send(ctx, method, path, query, in, out)
		if err != nil {
			return err
		}
	}

	return mapError(status, message)
}

// refresh rotates the token pair. It bypasses call so a failed rotation can
// never trigger another one.
func (c *HTTPClient) refresh(ctx context.Context) error {
	var tokens tokensEnvelope
	status, message, err := c.send(ctx, http.MethodPost, "/api/users.refresh", nil,
		refreshRequest{RefreshToken: c.currentRefreshToken()}, &tokens)
	if err != nil {
		return err
	}
	if err := mapError(status, message); err != nil {
		return err
	}
	c.setTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

// mapError converts an API status into a caller-facing error. Authorization
// failures and gateway-level outages collapse into sentinels the CLI can
// match with errors.Is; everything else carries the server's message.
func mapError(status int, message string) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("api error: %s", message)
	}
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out healthEnvelope
	if err := c.call(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*models.User, error) {
	var out userEnvelope
	err := c.call(ctx, http.MethodPost, "/api/users.signup", nil,
		credentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out loginEnvelope
	err := c.call(ctx, http.MethodPost, "/api/users.login", nil,
		credentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}

	c.setTokens(out.AccessToken, out.RefreshToken)

	return out.User, nil
}

// Logout discards the token pair. The server-side refresh token simply ages
// out; there is no revocation endpoint.
func (c *HTTPClient) Logout() {
	c.setTokens("", "")
}

func (c *HTTPClient) NewUploadURL(ctx context.Context) (string, string, error) {
	var out uploadURLEnvelope
	if err := c.call(ctx, http.MethodPost, "/api/invoices.uploadUrl", nil, nil, &out); err != nil {
		return "", "", err
	}
	return out.FilePath, out.UploadURL, nil
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, filePath string, fields map[string]*string) (*models.Invoice, error) {
	var out invoiceEnvelope
	err := c.call(ctx, http.MethodPost, "/api/invoices.create", nil,
		createInvoiceRequest{FilePath: filePath, Fields: fields}, &out)
	if err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (c *HTTPClient) ListInvoices(ctx context.Context, unreviewedOnly bool) ([]*models.Invoice, error) {
	var query url.Values
	if unreviewedOnly {
		query = url.Values{"unreviewed": {"1"}}
	}

	var out invoicesEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/invoices.list", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

func (c *HTTPClient) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var out invoiceEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/invoices.get", idQuery(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (c *HTTPClient) UpdateInvoice(ctx context.Context, id int64, fields map[string]*string) (*models.Invoice, error) {
	var out invoiceEnvelope
	err := c.call(ctx, http.MethodPost, "/api/invoices.update", nil,
		updateInvoiceRequest{ID: id, Fields: fields}, &out)
	if err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (c *HTTPClient) MarkReviewed(ctx context.Context, id int64) (*models.Invoice, error) {
	return c.setReviewed(ctx, "/api/invoices.review", id)
}

func (c *HTTPClient) ReopenReview(ctx context.Context, id int64) (*models.Invoice, error) {
	return c.setReviewed(ctx, "/api/invoices.reopen", id)
}

func (c *HTTPClient) setReviewed(ctx context.Context, path string, id int64) (*models.Invoice, error) {
	var out invoiceEnvelope
	if err := c.call(ctx, http.MethodPost, path, nil, invoiceIDRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (c *HTTPClient) DeleteInvoice(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodPost, "/api/invoices.delete", nil, invoiceIDRequest{ID: id}, nil)
}

func (c *HTTPClient) DocumentURL(ctx context.Context, id int64) (string, error) {
	var out urlEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/invoices.documentUrl", idQuery(id), nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
