package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/metrics"
)

// IgnoreCacheParam asks the datastore to bypass its response cache.
const IgnoreCacheParam = "ignore_cache"

// DefaultAuthErrorCodes are the datastore error codes that mean the caller's
// portal session is missing or expired.
var DefaultAuthErrorCodes = []string{"MISSING_SESSION_ID", "INVALID_TAPIS_TOKEN"}

type fetchState int

const (
	stateInitial fetchState = iota
	stateRetried
)

// DatastoreClient fetches report data from the session-authenticated
// datastore API. It keeps no state between calls.
type DatastoreClient struct {
	baseURL        string
	httpClient     *http.Client
	authErrorCodes map[string]struct{}
}

// Option customises a DatastoreClient.
type Option func(*DatastoreClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(dc *DatastoreClient) {
		if c != nil {
			dc.httpClient = c
		}
	}
}

// WithAuthErrorCodes replaces the recognised auth-failure codes.
func WithAuthErrorCodes(codes ...string) Option {
	return func(dc *DatastoreClient) {
		dc.authErrorCodes = make(map[string]struct{}, len(codes))
		for _, code := range codes {
			dc.authErrorCodes[code] = struct{}{}
		}
	}
}

// NewDatastoreClient creates a client rooted at baseURL (the datastore "api" root).
func NewDatastoreClient(baseURL string, opts ...Option) (*DatastoreClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse datastore url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("datastore url must be absolute, got %q", baseURL)
	}

	dc := &DatastoreClient{
		baseURL:    u.String(),
		httpClient: http.DefaultClient,
	}
	WithAuthErrorCodes(DefaultAuthErrorCodes...)(dc)
	for _, opt := range opts {
		opt(dc)
	}
	return dc, nil
}

// SubjectsEndpoint returns the subjects report endpoint.
func (dc *DatastoreClient) SubjectsEndpoint() string {
	endpoint, err := url.JoinPath(dc.baseURL, "subjects")
	if err != nil {
		return dc.baseURL + "/subjects"
	}
	return endpoint
}

// apiResponse is the envelope returned by the datastore.
type apiResponse struct {
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
	ErrorCode json.RawMessage `json:"error_code"`
}

// errorCode returns error_code as text. Non-string codes keep their JSON form
// so they never match an auth code.
func (r *apiResponse) errorCode() string {
	if r == nil || len(r.ErrorCode) == 0 || bytes.Equal(r.ErrorCode, []byte("null")) {
		return ""
	}
	var code string
	if err := json.Unmarshal(r.ErrorCode, &code); err == nil {
		return code
	}
	return string(bytes.TrimSpace(r.ErrorCode))
}

func (r *apiResponse) hasData() bool {
	return r != nil && len(r.Data) > 0 && !bytes.Equal(r.Data, []byte("null"))
}

func (r *apiResponse) hasError() bool {
	return r != nil && len(r.Error) > 0 && !bytes.Equal(r.Error, []byte("null"))
}

// Fetch retrieves report data from endpoint, forwarding the caller's session
// cookies. A response without data is retried exactly once with the cache
// bypass flag; auth failures and transport errors are never retried.
func (dc *DatastoreClient) Fetch(ctx context.Context, endpoint string, cookies []*http.Cookie) domain.FetchOutcome {
	outcome := dc.run(ctx, endpoint, cookies)
	metrics.FetchOutcomes.WithLabelValues(outcome.Status.String()).Inc()
	return outcome
}

func (dc *DatastoreClient) run(ctx context.Context, endpoint string, cookies []*http.Cookie) domain.FetchOutcome {
	state := stateInitial
	attempts := 0

	for {
		ignoreCache := state == stateRetried
		if ignoreCache {
			logger.InfoLog(ctx, "Requesting data from api %s to bypass cache", endpoint)
		} else {
			logger.InfoLog(ctx, "Requesting data from api %s", endpoint)
		}

		attempts++
		resp, err := dc.get(ctx, endpoint, cookies, ignoreCache)
		if err != nil {
			logger.WarnLog(ctx, err, "Datastore request failed")
			return domain.TransientErrorOutcome(err.Error(), attempts)
		}

		if resp.hasError() {
			code := resp.errorCode()
			logger.InfoLog(ctx, "Error response from datastore: error=%s error_code=%s", string(resp.Error), code)
			if dc.isAuthError(code) {
				return domain.AuthRequiredOutcome(attempts)
			}
		}

		if resp.hasData() {
			var payload domain.SubjectsPayload
			if err := json.Unmarshal(resp.Data, &payload); err != nil {
				logger.WarnLog(ctx, err, "Datastore data could not be decoded")
				return domain.TransientErrorOutcome(fmt.Sprintf("decode data: %v", err), attempts)
			}
			return domain.SuccessOutcome(&payload, attempts)
		}

		switch state {
		case stateInitial:
			state = stateRetried
		case stateRetried:
			return domain.NoDataOutcome(attempts)
		}
	}
}

func (dc *DatastoreClient) isAuthError(code string) bool {
	if code == "" {
		return false
	}
	_, ok := dc.authErrorCodes[code]
	return ok
}

// get issues one GET. An empty body decodes to an empty response.
func (dc *DatastoreClient) get(ctx context.Context, endpoint string, cookies []*http.Cookie, ignoreCache bool) (*apiResponse, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if ignoreCache {
		q := u.Query()
		q.Set(IgnoreCacheParam, strconv.FormatBool(true))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	metrics.FetchAttempts.WithLabelValues(strconv.FormatBool(ignoreCache)).Inc()
	res, err := dc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request datastore: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("datastore returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read datastore response: %w", err)
	}

	var resp apiResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return &resp, nil
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode datastore response: %w", err)
	}
	return &resp, nil
}
