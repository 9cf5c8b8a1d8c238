package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
)

// session owns the network-client state shared by every request sent
// through it for the lifetime of the execution context. Scripts address it
// only through its opaque token.
type session struct {
	id  string
	jar http.CookieJar
}

// pendingRequest is a fully constructed, not-yet-sent request. It moves
// through exactly one state transition: built by BuildRequest, consumed by
// SendRequest.
type pendingRequest struct {
	session *session
	method  string
	url     *url.URL
	opts    *RequestOptions
}

// Header is one response header in wire order. Names are lowercased;
// duplicate names keep their received value order.
type Header struct {
	Name  string
	Value string
}

// Response is the outcome of a sent request.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

// Store holds the in-flight sessions and pending requests of a single
// execution context. It is not safe for concurrent use; hosts running
// multiple contexts give each its own Store.
type Store struct {
	sessions map[string]*session
	requests map[string]*pendingRequest
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		requests: make(map[string]*pendingRequest),
	}
}

// CreateSession allocates a fresh session with default transport
// configuration and returns its token. It always succeeds.
func (s *Store) CreateSession() string {
	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New never fails with nil options
		panic(err)
	}

	sess := &session{
		id:  newToken(),
		jar: jar,
	}
	s.sessions[sess.id] = sess
	return sess.id
}

// BuildRequest validates and stores a pending request for the given
// session. It performs no I/O. Fails with ErrUnknownSession for a bad
// session token and ErrInvalidOptions for a malformed URL; opts must
// already be parsed (nil means defaults).
func (s *Store) BuildRequest(sessionID, method, rawURL string, opts *RequestOptions) (string, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSession, sessionID)
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: url: %v", ErrInvalidOptions, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: url scheme %q not supported", ErrInvalidOptions, u.Scheme)
	}

	if len(opts.Query) > 0 {
		q := u.Query()
		for k, v := range opts.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req := &pendingRequest{
		session: sess,
		method:  strings.ToUpper(method),
		url:     u,
		opts:    opts,
	}
	id := newToken()
	s.requests[id] = req
	return id, nil
}

// SendRequest consumes the pending request and performs the network call
// using the owning session's transport state. The request is removed from
// the store before the call, so a second send on the same token fails with
// ErrUnknownRequest rather than resending.
func (s *Store) SendRequest(ctx context.Context, requestID string) (*Response, error) {
	req, ok := s.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, requestID)
	}
	delete(s.requests, requestID)

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url.String(), bodyReader(req.opts.Body))
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}

	for k, v := range req.opts.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.opts.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.opts.ContentType)
	}
	if req.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.opts.UserAgent)
	}
	if req.opts.BasicAuth != nil {
		httpReq.SetBasicAuth(req.opts.BasicAuth.User, req.opts.BasicAuth.Password)
	}

	client := clientFor(req.session, req.opts)
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: orderedHeaders(resp.Header),
		Body:    body,
	}, nil
}

// Close releases every session and unconsumed pending request. Called when
// the owning execution context ends.
func (s *Store) Close() error {
	clear(s.sessions)
	clear(s.requests)
	return nil
}

func bodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return bytes.NewReader(body)
}

// clientFor builds the HTTP client for one send from the session's cookie
// jar plus the request's own options.
func clientFor(sess *session, opts *RequestOptions) *http.Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !opts.SSLVerify, //nolint:gosec // ssl_verify=false is a script-requested option
		},
	}
	if opts.Proxy != nil {
		tr.Proxy = http.ProxyURL(opts.Proxy)
	}

	client := &http.Client{
		Jar:       sess.jar,
		Timeout:   opts.Timeout,
		Transport: tr,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// orderedHeaders flattens a header map into name/value pairs with names
// lowercased and sorted; duplicate names keep their received value order.
func orderedHeaders(h http.Header) []Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Header
	for _, name := range names {
		for _, value := range h[name] {
			out = append(out, Header{Name: strings.ToLower(name), Value: value})
		}
	}
	return out
}

// newToken returns a fresh 16-byte opaque token in hex.
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
