package cli

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getPassword   = GetPassword
)

// Signup prompts for the account details and creates the account. A
// successful signup leaves the user logged in.
//
// Both password buffers are wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return &models.ValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	}

	user, err := a.authService.Signup(ctx, models.SignupRequest{
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return err
	}

	a.println("Account created. Welcome,", user.DisplayName())
	return nil
}

// Login prompts for credentials, authenticates and loads the user's entries.
// A failed entry load does not undo the login.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.println("Welcome,", user.DisplayName())

	if _, err := a.entryService.Refresh(ctx, models.EntryQuery{}); err != nil {
		a.showError(err)
	}
	return nil
}

// Logout ends the session locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// Me shows the profile of the logged-in user as the server reports it.
func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	a.printf("%s <%s>\n", u.DisplayName(), u.Email)
	if !u.CreatedAt.IsZero() {
		a.printf("Member since %s\n", u.CreatedAt.In(a.location()).Format("January 2, 2006"))
	}
	if u.LastLogin != nil && !u.LastLogin.IsZero() {
		a.printf("Last login %s\n", u.LastLogin.In(a.location()).Format("January 2, 2006 3:04 PM"))
	}
	return nil
}
