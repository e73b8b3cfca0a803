package transports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HTTPTransport implements API against the REST endpoints.
type HTTPTransport struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTPTransport returns a transport for baseURL authenticating with token
// (may be empty for Login).
func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{base: strings.TrimRight(baseURL, "/"), token: token, client: http.DefaultClient}
}

// StatusError carries a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		defer res.Body.Close()
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return nil, &StatusError{Code: res.StatusCode, Message: e.Error}
	}
	return res, nil
}

func (t *HTTPTransport) getJSON(ctx context.Context, path string, out any) error {
	res, err := t.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return json.NewDecoder(res.Body).Decode(out)
}

func (t *HTTPTransport) Login(ctx context.Context, username, password string) (Session, error) {
	res, err := t.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{"username": username, "password": password})
	if err != nil {
		return Session{}, err
	}
	defer res.Body.Close()
	var s Session
	err = json.NewDecoder(res.Body).Decode(&s)
	return s, err
}

func (t *HTTPTransport) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out struct {
		Profiles []Profile `json:"profiles"`
	}
	err := t.getJSON(ctx, "/v1/profiles", &out)
	return out.Profiles, err
}

func (t *HTTPTransport) Counter(ctx context.Context, profileID string) (json.RawMessage, error) {
	var out json.RawMessage
	err := t.getJSON(ctx, "/v1/profiles/"+url.PathEscape(profileID)+"/counter", &out)
	return out, err
}

// WatchCounter reads the SSE stream and forwards each "data:" line.
func (t *HTTPTransport) WatchCounter(ctx context.Context, profileID string, onSnapshot func(json.RawMessage) error) error {
	res, err := t.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(profileID)+"/counter/stream", nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	sc := bufio.NewScanner(res.Body)
	event := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := json.RawMessage(strings.TrimPrefix(line, "data: "))
			if event == "error" {
				return fmt.Errorf("stream: %s", data)
			}
			if err := onSnapshot(data); err != nil {
				return err
			}
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return sc.Err()
}

func (t *HTTPTransport) ListMemories(ctx context.Context, q MemoryQuery) ([]json.RawMessage, error) {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.FavoritesOnly {
		v.Set("favorites", "true")
	}
	path := "/v1/profiles/" + url.PathEscape(q.ProfileID) + "/memories"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out struct {
		Memories []json.RawMessage `json:"memories"`
	}
	err := t.getJSON(ctx, path, &out)
	return out.Memories, err
}

func (t *HTTPTransport) Activity(ctx context.Context, profileID string, limit int) ([]json.RawMessage, error) {
	path := "/v1/profiles/" + url.PathEscape(profileID) + "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Items []json.RawMessage `json:"items"`
	}
	err := t.getJSON(ctx, path, &out)
	return out.Items, err
}
