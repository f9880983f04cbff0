package services

import (
	"context"

	"table-order-kiosk/internal/localstore"
	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/state"
	"table-order-kiosk/internal/validation"

	"go.uber.org/zap"
)

// Credentials persists the sign-in in local storage and mirrors every
// change into the state store. The API client uses it to attach and purge
// the token.
type Credentials struct {
	store *localstore.Store
	state *state.Store
}

func NewCredentials(store *localstore.Store, st *state.Store) *Credentials {
	return &Credentials{store: store, state: st}
}

func (c *Credentials) Token() string {
	if token := c.store.Token(); token != "" {
		return token
	}
	return c.state.State().Auth.Token
}

func (c *Credentials) SetToken(token string) error {
	if err := c.store.SetToken(token); err != nil {
		return err
	}
	user, ok := c.store.User()
	if u := c.state.State().Auth.User; !ok && u != nil {
		user = *u
	}
	c.state.Dispatch(state.SetAuth(token, user))
	return nil
}

func (c *Credentials) SetUser(user model.User) error {
	if err := c.store.SetUser(user); err != nil {
		return err
	}
	if token := c.Token(); token != "" {
		c.state.Dispatch(state.SetAuth(token, user))
	}
	return nil
}

func (c *Credentials) ClearCredentials() {
	c.store.ClearCredentials()
	c.state.Dispatch(state.ClearAuth())
}

// Login signs staff in on the kiosk; the API client caches the credentials.
func (d *Diner) Login(ctx context.Context, req model.LoginRequest) (model.User, error) {
	if err := validation.Struct(req); err != nil {
		return model.User{}, err
	}
	resp, err := d.api.Login(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	if resp.Token != "" {
		d.state.Dispatch(state.SetAuth(resp.Token, resp.User))
	}
	d.logger.Info("staff signed in", zap.String("email", resp.User.Email))
	return resp.User, nil
}

func (d *Diner) Profile(ctx context.Context) (model.User, error) {
	return d.api.Profile(ctx)
}

func (d *Diner) Logout(ctx context.Context) error {
	err := d.api.Logout(ctx)
	d.state.Dispatch(state.ClearAuth())
	return err
}
