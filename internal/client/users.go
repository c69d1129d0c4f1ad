package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/petstore-client/internal/http"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Login response headers.
const (
	headerRateLimit    = "X-Rate-Limit"
	headerExpiresAfter = "X-Expires-After"
)

// UsersClient implements petstore.UsersClient.
type UsersClient struct {
	httpClient *http.Client
	executor   *converge.Executor
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *http.Client, executor *converge.Executor) *UsersClient {
	return &UsersClient{
		httpClient: httpClient,
		executor:   executor,
	}
}

func userPath(username string) string {
	return "/user/" + url.PathEscape(username)
}

// Create implements petstore.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, user *petstore.User) (*petstore.APIResponse, error) {
	resp, err := c.httpClient.Post(ctx, "/user", user)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// CreateWithArray implements petstore.UsersClient.CreateWithArray.
func (c *UsersClient) CreateWithArray(ctx context.Context, users []petstore.User) (*petstore.APIResponse, error) {
	return c.createMany(ctx, "/user/createWithArray", users)
}

// CreateWithList implements petstore.UsersClient.CreateWithList.
func (c *UsersClient) CreateWithList(ctx context.Context, users []petstore.User) (*petstore.APIResponse, error) {
	return c.createMany(ctx, "/user/createWithList", users)
}

func (c *UsersClient) createMany(ctx context.Context, path string, users []petstore.User) (*petstore.APIResponse, error) {
	if len(users) == 0 {
		return nil, petstore.ErrNoUsers
	}

	resp, err := c.httpClient.Post(ctx, path, users)
	if err != nil {
		return nil, fmt.Errorf("creating users: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// Get implements petstore.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, username string) (*petstore.User, error) {
	if username == "" {
		return nil, petstore.ErrUsernameRequired
	}

	resp, err := c.httpClient.Get(ctx, userPath(username), nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	var user petstore.User

	err = json.Unmarshal(resp.Body, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing user: %w", err)
	}

	return &user, nil
}

// Update implements petstore.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, username string, user *petstore.User) (*petstore.APIResponse, error) {
	if username == "" {
		return nil, petstore.ErrUsernameRequired
	}

	resp, err := c.httpClient.Put(ctx, userPath(username), withUsername(user, username))
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// Delete implements petstore.UsersClient.Delete. A user that is already
// gone is not an error.
func (c *UsersClient) Delete(ctx context.Context, username string) error {
	if username == "" {
		return petstore.ErrUsernameRequired
	}

	_, err := c.httpClient.Delete(ctx, userPath(username))
	if err != nil && !petstore.IsNotFound(err) {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// Login implements petstore.UsersClient.Login.
func (c *UsersClient) Login(ctx context.Context, username, password string) (*petstore.LoginSession, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	resp, err := c.httpClient.Get(ctx, "/user/login", query)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	apiResp, err := parseAPIResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	if apiResp.Message == "" {
		return nil, fmt.Errorf("logging in: %w", petstore.ErrUnexpectedLoginBody)
	}

	session := &petstore.LoginSession{Message: apiResp.Message}

	if limit, err := strconv.Atoi(resp.Headers.Get(headerRateLimit)); err == nil {
		session.RateLimit = limit
	}

	if expires := resp.Headers.Get(headerExpiresAfter); expires != "" {
		if at, err := time.Parse(time.UnixDate, expires); err == nil {
			session.ExpiresAfter = &at
		}
	}

	return session, nil
}

// Logout implements petstore.UsersClient.Logout.
func (c *UsersClient) Logout(ctx context.Context) (*petstore.APIResponse, error) {
	resp, err := c.httpClient.Get(ctx, "/user/logout", nil)
	if err != nil {
		return nil, fmt.Errorf("logging out: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// CreateUntilVisible implements petstore.UsersClient.CreateUntilVisible.
func (c *UsersClient) CreateUntilVisible(ctx context.Context, user *petstore.User) (*petstore.User, error) {
	if user.Username == "" {
		return nil, petstore.ErrUsernameRequired
	}

	res, err := c.executor.CreateUntilVisible(ctx, petstore.KindUser, user, converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return decodeUser(res)
}

// UpdateUntilReflected implements petstore.UsersClient.UpdateUntilReflected.
func (c *UsersClient) UpdateUntilReflected(ctx context.Context, username string, user *petstore.User) (*petstore.User, error) {
	if username == "" {
		return nil, petstore.ErrUsernameRequired
	}

	res, err := c.executor.UpdateUntilReflected(ctx, petstore.UserRef(username),
		converge.Replace(withUsername(user, username)), converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return decodeUser(res)
}

// DeleteUntilAbsent implements petstore.UsersClient.DeleteUntilAbsent.
func (c *UsersClient) DeleteUntilAbsent(ctx context.Context, username string) error {
	err := c.executor.DeleteUntilAbsent(ctx, petstore.UserRef(username), converge.Policy{})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// withUsername returns user with its username defaulted to the path key.
func withUsername(user *petstore.User, username string) *petstore.User {
	if user.Username != "" {
		return user
	}

	updated := *user
	updated.Username = username

	return &updated
}

func decodeUser(res *converge.Resource) (*petstore.User, error) {
	var user petstore.User

	err := res.Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("parsing user: %w", err)
	}

	return &user, nil
}
