package sheets

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/maisydat/sheetbridge/pkg/config"
	pkgerrors "github.com/maisydat/sheetbridge/pkg/errors"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

const (
	defaultTokenEndpoint = "https://oauth2.googleapis.com/token"
	spreadsheetsScope    = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrantType   = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime    = time.Hour
	tokenExpirySlack     = time.Minute
)

var (
	errCredentialsRequired = errors.New("sheets service account credentials are required")
	errLoggerRequired      = errors.New("sheets logger is required")
)

// Result reports the outcome of a sink operation. Sink failures are carried
// here instead of as raw errors so callers can keep serving the request.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	UpdatedRows int64  `json:"updated_rows,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Client appends rows to Google Sheets using a service-account identity.
// Token minting is done by hand (signed JWT assertion exchanged at the token
// endpoint) so credential failures surface with usable messages.
type Client struct {
	cfg     config.SheetsConfig
	key     serviceAccountKey
	signer  *rsa.PrivateKey
	httpc   *http.Client
	logger  *logger.Logger
	apiOpts []option.ClientOption

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient parses the service-account blob and validates the signing key.
func NewClient(cfg config.SheetsConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	raw := strings.TrimSpace(cfg.ServiceAccountJSON)
	if raw == "" {
		return nil, errCredentialsRequired
	}

	var key serviceAccountKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCredential, err, "service account credentials are not valid JSON")
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeCredential, "service account credentials are missing client_email or private_key")
	}

	signer, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCredential, err, "service account private key is not a valid PEM block")
	}

	c := &Client{
		cfg:    cfg,
		key:    key,
		signer: signer,
		httpc:  &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logg,
	}
	if cfg.APIEndpoint != "" {
		c.apiOpts = append(c.apiOpts, option.WithEndpoint(cfg.APIEndpoint))
	}
	return c, nil
}

// ClientEmail returns the service-account identity, for share-with hints.
func (c *Client) ClientEmail() string {
	if c == nil {
		return ""
	}
	return c.key.ClientEmail
}

func (c *Client) tokenEndpoint() string {
	if c.cfg.TokenEndpoint != "" {
		return c.cfg.TokenEndpoint
	}
	if c.key.TokenURI != "" {
		return c.key.TokenURI
	}
	return defaultTokenEndpoint
}

func (c *Client) signAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   c.key.ClientEmail,
		"scope": spreadsheetsScope,
		"aud":   c.tokenEndpoint(),
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.signer)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeCredential, err, "signing token assertion")
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// token returns a cached access token, exchanging a fresh assertion when the
// cached one is within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.accessToken != "" && now.Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "token endpoint unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading token response")
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "token response is not valid JSON")
	}
	if resp.StatusCode != http.StatusOK || parsed.AccessToken == "" {
		if parsed.Error != "" {
			return "", pkgerrors.New(pkgerrors.CodeCredential, fmt.Sprintf("token exchange failed: %s (%s)", parsed.Error, parsed.ErrorDescription))
		}
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("token exchange failed with status %d", resp.StatusCode))
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = now.Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) service(ctx context.Context) (*sheetsapi.Service, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})
	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, source))}, c.apiOpts...)
	return sheetsapi.NewService(ctx, opts...)
}

// GetHeaders reads the first row of the named sheet.
func (c *Client) GetHeaders(ctx context.Context, spreadsheetID, sheetName string) ([]string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	rng := fmt.Sprintf("%s!1:1", c.sheetName(sheetName))
	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err, "reading sheet headers")
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	return headers, nil
}

// EnsureHeaders writes the wanted header row when the sheet has none.
func (c *Client) EnsureHeaders(ctx context.Context, spreadsheetID, sheetName string, wanted []string) error {
	existing, err := c.GetHeaders(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	row := make([]any, 0, len(wanted))
	for _, h := range wanted {
		row = append(row, h)
	}
	body := &sheetsapi.ValueRange{Values: [][]any{row}}
	rng := fmt.Sprintf("%s!A1", c.sheetName(sheetName))
	_, err = svc.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return mapAPIError(err, "writing sheet headers")
	}
	return nil
}

// AppendRow aligns the record to the sheet's header order and appends one row.
// Keys carry the record's field order, used as the header row for empty sheets.
// Record keys with no matching header are dropped.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, sheetName string, keys []string, fields map[string]string) Result {
	// Header bootstrap is best effort. A concurrent writer may have
	// already shaped the header row, so the re-read below is authoritative.
	if err := c.EnsureHeaders(ctx, spreadsheetID, sheetName, keys); err != nil {
		c.logger.Warn(ctx, fmt.Sprintf("could not write headers to spreadsheet %s: %v", spreadsheetID, err))
	}

	headers, err := c.GetHeaders(ctx, spreadsheetID, sheetName)
	if err != nil {
		return failureFromError(err)
	}
	if len(headers) == 0 {
		headers = keys
	}

	row, dropped := alignRow(headers, keys, fields)
	if len(dropped) > 0 {
		c.logger.Warn(ctx, fmt.Sprintf("record fields without a matching header column were dropped: %s", strings.Join(dropped, ", ")))
	}

	svc, err := c.service(ctx)
	if err != nil {
		return failureFromError(err)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	body := &sheetsapi.ValueRange{Values: [][]any{row}}
	resp, err := svc.Spreadsheets.Values.Append(spreadsheetID, c.sheetName(sheetName), body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return failureFromError(mapAPIError(err, "appending row"))
	}

	var updated int64
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRows
	}
	if updated == 0 {
		return failure("append reported success but no rows were written to spreadsheet %s", spreadsheetID)
	}
	return Result{Success: true, Message: "row appended", UpdatedRows: updated}
}

// TestConnection verifies the credentials can reach the spreadsheet and maps
// the usual failure modes to actionable messages.
func (c *Client) TestConnection(ctx context.Context, spreadsheetID string) Result {
	if _, err := c.token(ctx); err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeCredential {
			return failure("invalid service account credentials: %s", appErr.Error())
		}
		return failure("could not reach the token endpoint: %v", err)
	}

	svc, err := c.service(ctx)
	if err != nil {
		return failureFromError(err)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	meta, err := svc.Spreadsheets.Get(spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusForbidden:
				return failure("access denied: share the spreadsheet with %s", c.key.ClientEmail)
			case http.StatusNotFound:
				return failure("spreadsheet %s not found: check the spreadsheet ID", spreadsheetID)
			}
		}
		return failure("could not open spreadsheet %s: %v", spreadsheetID, err)
	}

	title := ""
	if meta.Properties != nil {
		title = meta.Properties.Title
	}
	return Result{Success: true, Message: fmt.Sprintf("connected to spreadsheet %q", title)}
}

func (c *Client) sheetName(name string) string {
	if name != "" {
		return name
	}
	if c.cfg.DefaultSheetName != "" {
		return c.cfg.DefaultSheetName
	}
	return "Sheet1"
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// alignRow builds one row in header order. Headers with no matching record
// field become empty cells; record fields with no header are reported back in
// record order.
func alignRow(headers, keys []string, fields map[string]string) ([]any, []string) {
	row := make([]any, 0, len(headers))
	byHeader := make(map[string]bool, len(headers))
	for _, h := range headers {
		byHeader[h] = true
		if v, ok := fields[h]; ok {
			row = append(row, v)
		} else {
			row = append(row, "")
		}
	}
	var dropped []string
	for _, k := range keys {
		if _, ok := fields[k]; ok && !byHeader[k] {
			dropped = append(dropped, k)
		}
	}
	return row, dropped
}

func failureFromError(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

func mapAPIError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, fmt.Sprintf("%s: access denied by the Sheets API", op))
		case http.StatusNotFound:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("%s: spreadsheet or sheet not found", op))
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
