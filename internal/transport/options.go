package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// BasicAuth holds credentials for the Authorization header.
type BasicAuth struct {
	User     string
	Password string
}

// RequestOptions is the parsed, validated configuration of a pending
// request. Parsing is pure; nothing here touches the network.
type RequestOptions struct {
	Query     map[string]string
	Headers   map[string]string
	UserAgent string
	BasicAuth *BasicAuth

	// Body is the raw request body. ContentType is set when the body came
	// from the form or json option.
	Body        []byte
	ContentType string

	Timeout         time.Duration
	Proxy           *url.URL
	SSLVerify       bool
	FollowRedirects bool
}

// DefaultOptions returns the options used when a script passes none.
func DefaultOptions() *RequestOptions {
	return &RequestOptions{
		Timeout:         DefaultTimeout,
		SSLVerify:       true,
		FollowRedirects: true,
	}
}

// ParseOptions validates an option mapping (as converted from the script
// value model) into a RequestOptions. Unrecognized keys and recognized
// keys of the wrong shape fail with ErrInvalidOptions.
func ParseOptions(opts map[string]any) (*RequestOptions, error) {
	out := DefaultOptions()

	var bodySources []string
	for key, value := range opts {
		switch key {
		case "query":
			m, err := stringMap(key, value)
			if err != nil {
				return nil, err
			}
			out.Query = m
		case "headers":
			m, err := stringMap(key, value)
			if err != nil {
				return nil, err
			}
			out.Headers = m
		case "body":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			out.Body = []byte(s)
			bodySources = append(bodySources, key)
		case "form":
			m, err := stringMap(key, value)
			if err != nil {
				return nil, err
			}
			form := url.Values{}
			for k, v := range m {
				form.Set(k, v)
			}
			out.Body = []byte(form.Encode())
			out.ContentType = "application/x-www-form-urlencoded"
			bodySources = append(bodySources, key)
		case "json":
			payload, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("%w: json option: %v", ErrInvalidOptions, err)
			}
			out.Body = payload
			out.ContentType = "application/json"
			bodySources = append(bodySources, key)
		case "basic_auth":
			auth, err := basicAuthValue(value)
			if err != nil {
				return nil, err
			}
			out.BasicAuth = auth
		case "user_agent":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			out.UserAgent = s
		case "timeout":
			d, err := timeoutValue(value)
			if err != nil {
				return nil, err
			}
			out.Timeout = d
		case "proxy":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			proxy, err := url.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: proxy: %v", ErrInvalidOptions, err)
			}
			switch proxy.Scheme {
			case "http", "https", "socks5":
			default:
				return nil, fmt.Errorf("%w: proxy scheme %q not supported", ErrInvalidOptions, proxy.Scheme)
			}
			out.Proxy = proxy
		case "ssl_verify":
			b, err := boolValue(key, value)
			if err != nil {
				return nil, err
			}
			out.SSLVerify = b
		case "follow_redirects":
			b, err := boolValue(key, value)
			if err != nil {
				return nil, err
			}
			out.FollowRedirects = b
		default:
			return nil, fmt.Errorf("%w: unrecognized option %q", ErrInvalidOptions, key)
		}
	}

	if len(bodySources) > 1 {
		return nil, fmt.Errorf("%w: options %v are mutually exclusive", ErrInvalidOptions, bodySources)
	}

	return out, nil
}

func stringValue(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: option %q must be a string", ErrInvalidOptions, key)
	}
	return s, nil
}

func boolValue(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: option %q must be a boolean", ErrInvalidOptions, key)
	}
	return b, nil
}

func stringMap(key string, value any) (map[string]string, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: option %q must be a table of strings", ErrInvalidOptions, key)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: option %q: value for %q must be a string", ErrInvalidOptions, key, k)
		}
		out[k] = s
	}
	return out, nil
}

func basicAuthValue(value any) (*BasicAuth, error) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("%w: basic_auth must be a {user, password} pair", ErrInvalidOptions)
	}
	user, uok := pair[0].(string)
	password, pok := pair[1].(string)
	if !uok || !pok {
		return nil, fmt.Errorf("%w: basic_auth must be a {user, password} pair", ErrInvalidOptions)
	}
	return &BasicAuth{User: user, Password: password}, nil
}

func timeoutValue(value any) (time.Duration, error) {
	var secs float64
	switch v := value.(type) {
	case int64:
		secs = float64(v)
	case float64:
		secs = v
	default:
		return 0, fmt.Errorf("%w: timeout must be a number of seconds", ErrInvalidOptions)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive", ErrInvalidOptions)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
