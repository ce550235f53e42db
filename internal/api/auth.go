package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"trustdesk-cli/internal/model"
)

// Login exchanges credentials for a token and stores it on the client's
// session.
func (c *Client) Login(ctx context.Context, in model.LoginInput) (model.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		return model.Session{}, Classify(err)
	}
	body, err := jsonBody(in)
	if err != nil {
		return model.Session{}, Classify(err)
	}
	var env struct {
		Data  *model.Session `json:"data"`
		Token string         `json:"token"`
		User  model.User     `json:"user"`
	}
	req := request{
		method:      http.MethodPost,
		path:        "/login",
		body:        body,
		contentType: "application/json",
		anonymous:   true,
	}
	if err := c.do(ctx, req, &env); err != nil {
		return model.Session{}, err
	}
	sess := model.Session{Token: env.Token, User: env.User}
	if env.Data != nil {
		sess = *env.Data
	}
	if strings.TrimSpace(sess.Token) == "" {
		return model.Session{}, &Error{Kind: KindServer, Message: "login response did not include a token"}
	}
	c.session.SetToken(sess.Token)
	return sess, nil
}

// Logout revokes the token server-side when possible and always clears the
// local session. The server error, if any, is returned for logging.
func (c *Client) Logout(ctx context.Context) error {
	if !c.session.LoggedIn() {
		return nil
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/logout"}, nil)
	c.session.Clear()
	return err
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/me"}, &raw); err != nil {
		return model.User{}, err
	}
	return decodeItem[model.User](raw)
}
