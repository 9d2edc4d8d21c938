package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe turns client errors into short messages for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized (log in again)"
	case errors.Is(err, client.ErrAlreadyExists):
		return "email is already registered"
	case errors.Is(err, client.ErrNotFound):
		return "user not found"
	}
	return err.Error()
}

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.client.Register(ctx, email, name, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered user %d (%s)\n", user.ID, user.Email)
	return nil
}

// Login authenticates and keeps the session token in the client. A previous
// session of the same account, here or elsewhere, stops working.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return err
	}

	a.setEmail(email)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.client.Logout(ctx)
	a.setEmail("")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:    %d\nName:  %s\nEmail: %s\n", user.ID, user.Name, user.Email)
	return nil
}

// Delete removes the logged in account after the user types "yes".
func (a *App) Delete(ctx context.Context) error {
	if !a.client.LoggedIn() {
		return client.ErrNotLoggedIn
	}

	answer, err := getSimpleText(a.reader, "Delete your account? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.DeleteAccount(ctx); err != nil {
		return err
	}

	a.setEmail("")
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "pong")
	return nil
}
