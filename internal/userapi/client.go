package userapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"user-admin-console/internal/domain"
	"user-admin-console/internal/transport/rest"
)

const usersPath = "/users"

var errMissingID = errors.New("user id is required")

// Client is the users backend client. It adds no validation and no retries of its own.
type Client struct {
	rest *rest.Client
}

var _ domain.UserRepository = (*Client)(nil)

func New(rc *rest.Client) *Client { return &Client{rest: rc} }

// List fetches one page; page defaults to 1 and limit to 10.
func (c *Client) List(ctx context.Context, page, limit int) (*domain.Page[domain.User], error) {
	page, limit = domain.NormalizePaging(page, limit)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	out, err := rest.Do[domain.Page[domain.User]](ctx, c.rest, rest.Request{
		Method: http.MethodGet,
		Path:   usersPath,
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []domain.User{}
	}
	return out, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*domain.User, error) {
	p, err := userPath(id)
	if err != nil {
		return nil, err
	}
	return rest.Do[domain.User](ctx, c.rest, rest.Request{Method: http.MethodGet, Path: p})
}

// Create expects in to be validated already.
func (c *Client) Create(ctx context.Context, in domain.UserCreateData) (*domain.User, error) {
	return rest.Do[domain.User](ctx, c.rest, rest.Request{
		Method: http.MethodPost,
		Path:   usersPath,
		Body:   in,
	})
}

// Update transmits only the supplied fields.
func (c *Client) Update(ctx context.Context, id string, in domain.UserUpdateData) (*domain.User, error) {
	p, err := userPath(id)
	if err != nil {
		return nil, err
	}
	return rest.Do[domain.User](ctx, c.rest, rest.Request{
		Method: http.MethodPut,
		Path:   p,
		Body:   in.Normalize(),
	})
}

// Delete is not idempotent: deleting a missing id surfaces the backend error as is.
func (c *Client) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	p, err := userPath(id)
	if err != nil {
		return nil, err
	}
	out, err := rest.Do[domain.DeleteResult](ctx, c.rest, rest.Request{Method: http.MethodDelete, Path: p})
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = strings.TrimSpace(id)
	}
	return out, nil
}

func userPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &rest.Error{Kind: rest.KindRequest, Message: errMissingID.Error(), Err: errMissingID}
	}
	return usersPath + "/" + url.PathEscape(id), nil
}
