package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// uploadPackService is the smart-HTTP service queried for refs.
const uploadPackService = "git-upload-pack"

// responseLimitRefs caps the size of a ref advertisement.
const responseLimitRefs = 8 << 20 // 8MB

// Endpoint identifies a remote repository reachable over HTTP(S).
// BaseURL has no trailing slash and no credentials.
type Endpoint struct {
	Raw     string
	BaseURL string
	user    string
	pass    string
}

// ParseEndpoint parses a remote URL into a canonical endpoint.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("remote URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("remote URL scheme %q not supported (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("remote URL must include a host")
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	endpointURL := *u
	endpointURL.User = nil
	endpointURL.RawQuery = ""
	endpointURL.Fragment = ""

	return Endpoint{
		Raw:     raw,
		BaseURL: strings.TrimRight(endpointURL.String(), "/"),
		user:    user,
		pass:    pass,
	}, nil
}

// DiscoveryURL is the ref advertisement URL for the upload-pack service.
func (e Endpoint) DiscoveryURL() string {
	return e.BaseURL + "/info/refs?service=" + uploadPackService
}

// ClientOptions configures the remote client.
type ClientOptions struct {
	Timeout     time.Duration // HTTP client timeout (default 60s)
	MaxAttempts int           // retry attempts (default 3)
	Backoff     time.Duration // first retry delay (default 1s)
	Logger      *zap.Logger
	HTTPClient  *http.Client // overrides Timeout when set
}

// Client lists refs on a remote repository. It does not transfer objects.
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	token       string
	user        string
	pass        string
	maxAttempts int
	backoff     time.Duration
	log         *zap.Logger
}

// NewClient creates a remote client with default options.
//
// Auth resolution order:
// 1) GIT_TOKEN (Bearer)
// 2) GIT_USERNAME + GIT_PASSWORD (Basic)
// 3) URL userinfo (Basic)
func NewClient(remoteURL string) (*Client, error) {
	return NewClientWithOptions(remoteURL, ClientOptions{})
}

// NewClientWithOptions creates a remote client with configurable options.
// Zero-value or negative fields in opts receive defaults.
func NewClientWithOptions(remoteURL string, opts ClientOptions) (*Client, error) {
	endpoint, err := ParseEndpoint(remoteURL)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	token := strings.TrimSpace(os.Getenv("GIT_TOKEN"))
	user := strings.TrimSpace(os.Getenv("GIT_USERNAME"))
	pass := os.Getenv("GIT_PASSWORD")
	if token == "" && user == "" && endpoint.user != "" {
		user = endpoint.user
		pass = endpoint.pass
	}

	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		token:       token,
		user:        user,
		pass:        pass,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		log:         opts.Logger,
	}, nil
}

// Endpoint returns the parsed endpoint metadata.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

func (c *Client) applyAuth(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.user != "":
		req.SetBasicAuth(c.user, c.pass)
	}
}

// FetchAdvertisement retrieves the raw ref advertisement.
func (c *Client) FetchAdvertisement(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.DiscoveryURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-"+uploadPackService+"-advertisement, */*")
	req.Header.Set("Accept-Encoding", "gzip")
	c.applyAuth(req)

	c.log.Debug("fetching refs", zap.String("url", req.URL.String()))
	resp, err := retryDo(ctx, c.httpClient, req, c.maxAttempts, c.backoff)
	if err != nil {
		return nil, fmt.Errorf("fetch refs from %s: %w", c.endpoint.BaseURL, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch refs from %s: %w", c.endpoint.BaseURL, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, responseLimitRefs))
	if err != nil {
		return nil, fmt.Errorf("fetch refs from %s: read: %w", c.endpoint.BaseURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("fetch refs from %s: status %d: %s", c.endpoint.BaseURL, resp.StatusCode, msg)
	}
	c.log.Debug("fetched refs", zap.Int("bytes", len(data)))
	return data, nil
}

// ListRefs fetches and parses the remote ref advertisement.
func (c *Client) ListRefs(ctx context.Context) (*Advertisement, error) {
	data, err := c.FetchAdvertisement(ctx)
	if err != nil {
		return nil, err
	}
	adv, err := ParseAdvertisement(data)
	if err != nil {
		return nil, fmt.Errorf("list refs from %s: %w", c.endpoint.BaseURL, err)
	}
	return adv, nil
}
