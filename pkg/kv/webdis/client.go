// Package webdis implements the kv.Store contract as an HTTP client for a
// Webdis gateway (an HTTP front end for Redis).
//
// Each store command maps to one HTTP GET of the form
//
//	<host>/<COMMAND>/<arg1>/<arg2>/...
//
// with path-escaped arguments and a JSON response keyed by command name.
// The test-fixture FLUSHALL endpoint described by the service contract is
// exactly `GET <host>/FLUSHALL`.
package webdis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a Webdis-backed kv.Store.
type Client struct {
	host       string
	httpClient *http.Client
}

// New creates a client for the Webdis gateway at host, e.g.
// "http://127.0.0.1:7379".
func New(host string) *Client {
	return &Client{
		host: strings.TrimRight(host, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Host returns the configured gateway base URL.
func (c *Client) Host() string {
	return c.host
}

// Close is a no-op; the client holds no persistent connections beyond the
// http.Client's idle pool.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do issues one command and returns the raw JSON result for it.
//
// Webdis responds with a single-key object {"<COMMAND>": <result>}. Error
// replies come back as [false, "ERR ..."] and are surfaced as errors.
func (c *Client) do(ctx context.Context, command string, args ...string) (json.RawMessage, error) {
	var path strings.Builder
	path.WriteString(c.host)
	path.WriteByte('/')
	path.WriteString(command)
	for _, arg := range args {
		path.WriteByte('/')
		path.WriteString(url.PathEscape(arg))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", command, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", command, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", command, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", command, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply map[string]json.RawMessage
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", command, err)
	}

	result, ok := reply[command]
	if !ok {
		return nil, fmt.Errorf("%s response missing command key", command)
	}

	// Status and error replies arrive as [bool, "message"]. Match the
	// false token literally; a null first element is a legitimate HMGET
	// result, not a status.
	var status []json.RawMessage
	if err := json.Unmarshal(result, &status); err == nil && len(status) == 2 {
		if strings.TrimSpace(string(status[0])) == "false" {
			var msg string
			_ = json.Unmarshal(status[1], &msg)
			return nil, fmt.Errorf("%s failed: %s", command, msg)
		}
	}

	return result, nil
}

func (c *Client) doInt(ctx context.Context, command string, args ...string) (int, error) {
	result, err := c.do(ctx, command, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := json.Unmarshal(result, &n); err != nil {
		return 0, fmt.Errorf("unexpected %s reply %s: %w", command, result, err)
	}
	return n, nil
}

// HSet stores field=value in the hash at key.
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	_, err := c.do(ctx, "HSET", key, field, value)
	return err
}

// HSetMulti stores all fields in the hash at key with a single HSET call.
func (c *Client) HSetMulti(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]string, 0, 1+2*len(fields))
	args = append(args, key)
	for field, value := range fields {
		args = append(args, field, value)
	}
	_, err := c.do(ctx, "HSET", args...)
	return err
}

// HGet returns the value of field in the hash at key.
func (c *Client) HGet(ctx context.Context, key, field string) (string, bool, error) {
	result, err := c.do(ctx, "HGET", key, field)
	if err != nil {
		return "", false, err
	}
	var value *string
	if err := json.Unmarshal(result, &value); err != nil {
		return "", false, fmt.Errorf("unexpected HGET reply %s: %w", result, err)
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

// HMGet returns the present fields among the requested ones.
func (c *Client) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}

	args := append([]string{key}, fields...)
	result, err := c.do(ctx, "HMGET", args...)
	if err != nil {
		return nil, err
	}

	var values []*string
	if err := json.Unmarshal(result, &values); err != nil {
		return nil, fmt.Errorf("unexpected HMGET reply %s: %w", result, err)
	}
	if len(values) != len(fields) {
		return nil, fmt.Errorf("HMGET returned %d values for %d fields", len(values), len(fields))
	}

	present := make(map[string]string, len(fields))
	for i, value := range values {
		if value != nil {
			present[fields[i]] = *value
		}
	}
	return present, nil
}

// HGetAll returns every field of the hash at key.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	result, err := c.do(ctx, "HGETALL", key)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	if err := json.Unmarshal(result, &values); err != nil {
		return nil, fmt.Errorf("unexpected HGETALL reply %s: %w", result, err)
	}
	return values, nil
}

// HLen returns the number of fields in the hash at key.
func (c *Client) HLen(ctx context.Context, key string) (int, error) {
	return c.doInt(ctx, "HLEN", key)
}

// SAdd adds members to the set at key.
func (c *Client) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := append([]string{key}, members...)
	_, err := c.do(ctx, "SADD", args...)
	return err
}

// SMembers returns all members of the set at key.
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	result, err := c.do(ctx, "SMEMBERS", key)
	if err != nil {
		return nil, err
	}
	var members []string
	if err := json.Unmarshal(result, &members); err != nil {
		return nil, fmt.Errorf("unexpected SMEMBERS reply %s: %w", result, err)
	}
	return members, nil
}

// SCard returns the cardinality of the set at key.
func (c *Client) SCard(ctx context.Context, key string) (int, error) {
	return c.doInt(ctx, "SCARD", key)
}

// SIsMember reports whether member is in the set at key.
func (c *Client) SIsMember(ctx context.Context, key, member string) (bool, error) {
	n, err := c.doInt(ctx, "SISMEMBER", key, member)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Exists reports whether key exists.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.doInt(ctx, "EXISTS", key)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FlushAll removes every key from the Redis server behind the gateway.
func (c *Client) FlushAll(ctx context.Context) error {
	_, err := c.do(ctx, "FLUSHALL")
	return err
}
