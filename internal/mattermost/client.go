package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// apiPrefix is the REST API v4 path prefix on every Mattermost server.
	apiPrefix = "/api/v4"

	// singleTimeout bounds single-entity lookups (user, channel, reactions).
	singleTimeout = 10 * time.Second

	// listTimeout bounds list and pagination calls (posts, threads, members).
	listTimeout = 30 * time.Second

	// RateLimit matches the server's default per-user rate limit.
	RateLimit = 10.0

	// DefaultPageSize is the posts-per-page default for paginated fetches.
	DefaultPageSize = 100

	// MaxPageSize is the server's hard per_page ceiling.
	MaxPageSize = 200
)

// Client is a rate-limited HTTP client for the Mattermost REST API v4.
// Failed requests are never retried; errors propagate to the caller with
// enough detail for a manual retry.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
	baseURL    string
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit overrides the requests-per-second pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets a logger for request diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the given server, authenticating every
// request with the personal access token as a bearer token.
func NewClient(serverURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		token:      strings.TrimSpace(token),
		baseURL:    strings.TrimRight(strings.TrimSpace(serverURL), "/"),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ServerURL returns the configured server base URL without a trailing slash.
func (c *Client) ServerURL() string {
	return c.baseURL
}

// checkHTTPErrors maps a non-2xx response to the error taxonomy.
func checkHTTPErrors(resp *http.Response, endpoint string) error {
	if resp.StatusCode < 400 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401 on %s", ErrInvalidCredential, endpoint)
	case http.StatusForbidden:
		return fmt.Errorf("%w: status 403 on %s", ErrAccessDenied, endpoint)
	case http.StatusNotFound:
		return fmt.Errorf("%w: status 404 on %s", ErrNotFound, endpoint)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		Endpoint:   endpoint,
	}
}

// classifyTransportError distinguishes deadline hits from connection failures.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, timeout time.Duration, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, timeout, out)
}

// post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body interface{}, timeout time.Duration, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, timeout, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, timeout time.Duration, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := apiPrefix + path
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if err := checkHTTPErrors(resp, endpoint); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return classifyTransportError(cerr)
		}
		return fmt.Errorf("%w: decoding %s: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrValidation)
	}

	var post Post
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID), nil, singleTimeout, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetReactions fetches the reactions on a single post. A post with no
// reactions yields an empty slice.
func (c *Client) GetReactions(ctx context.Context, postID string) ([]Reaction, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrValidation)
	}

	var reactions []Reaction
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/reactions", nil, singleTimeout, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}

// GetThread fetches a post's full thread. The server puts the root first
// in the returned order; replies keep their server-defined order.
func (c *Client) GetThread(ctx context.Context, postID string) (*Thread, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrValidation)
	}

	var pl postList
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/thread", nil, listTimeout, &pl); err != nil {
		return nil, err
	}

	posts := pl.inOrder()
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: thread %s has no posts", ErrInvalidResponse, postID)
	}

	return &Thread{Root: posts[0], Replies: posts[1:]}, nil
}

// GetUser fetches a user profile by id.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), nil, singleTimeout, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMe fetches the profile of the token's owner.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/me", nil, singleTimeout, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername fetches a user profile by username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	var user User
	if err := c.get(ctx, "/users/username/"+url.PathEscape(username), nil, singleTimeout, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user profile by email address.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	var user User
	if err := c.get(ctx, "/users/email/"+url.PathEscape(email), nil, singleTimeout, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetChannel fetches channel metadata by id.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrValidation)
	}

	var channel Channel
	if err := c.get(ctx, "/channels/"+url.PathEscape(channelID), nil, singleTimeout, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetTeam fetches team metadata by id.
func (c *Client) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrValidation)
	}

	var team Team
	if err := c.get(ctx, "/teams/"+url.PathEscape(teamID), nil, singleTimeout, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// GetChannelMembers fetches every member of a channel and resolves their
// profiles in bulk. Membership pages are walked to the end before profiles
// are requested.
func (c *Client) GetChannelMembers(ctx context.Context, channelID string) ([]User, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrValidation)
	}

	var userIDs []string
	for page := 0; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(MaxPageSize)},
		}

		var members []ChannelMember
		if err := c.get(ctx, "/channels/"+url.PathEscape(channelID)+"/members", query, listTimeout, &members); err != nil {
			return nil, err
		}
		if len(members) == 0 {
			break
		}
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}
		if len(members) < MaxPageSize {
			break
		}
	}

	return c.GetUsersByIDs(ctx, userIDs)
}

// GetUsersByIDs fetches user profiles in bulk, preserving the input order.
func (c *Client) GetUsersByIDs(ctx context.Context, userIDs []string) ([]User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	byID := make(map[string]User, len(userIDs))
	for start := 0; start < len(userIDs); start += MaxPageSize {
		end := start + MaxPageSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		var users []User
		if err := c.post(ctx, "/users/ids", userIDs[start:end], listTimeout, &users); err != nil {
			return nil, err
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	ordered := make([]User, 0, len(byID))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// GetChannelMember fetches one membership row, ErrNotFound if the user is
// not in the channel.
func (c *Client) GetChannelMember(ctx context.Context, channelID, userID string) (*ChannelMember, error) {
	if channelID == "" || userID == "" {
		return nil, fmt.Errorf("%w: channel id and user id are required", ErrValidation)
	}

	var member ChannelMember
	path := "/channels/" + url.PathEscape(channelID) + "/members/" + url.PathEscape(userID)
	if err := c.get(ctx, path, nil, singleTimeout, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// AddChannelMember adds a user to a channel.
func (c *Client) AddChannelMember(ctx context.Context, channelID, userID string) error {
	if channelID == "" || userID == "" {
		return fmt.Errorf("%w: channel id and user id are required", ErrValidation)
	}

	body := map[string]string{"user_id": userID}
	return c.post(ctx, "/channels/"+url.PathEscape(channelID)+"/members", body, singleTimeout, nil)
}

// CreateDirectChannel opens (or returns the existing) direct-message
// channel between two users.
func (c *Client) CreateDirectChannel(ctx context.Context, firstUserID, secondUserID string) (*Channel, error) {
	if firstUserID == "" || secondUserID == "" {
		return nil, fmt.Errorf("%w: both user ids are required", ErrValidation)
	}

	var channel Channel
	if err := c.post(ctx, "/channels/direct", []string{firstUserID, secondUserID}, singleTimeout, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// CreatePost posts a message to a channel.
func (c *Client) CreatePost(ctx context.Context, channelID, message string) (*Post, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", ErrValidation)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrValidation)
	}

	body := map[string]string{
		"channel_id": channelID,
		"message":    message,
	}

	var post Post
	if err := c.post(ctx, "/posts", body, singleTimeout, &post); err != nil {
		return nil, err
	}
	return &post, nil
}
