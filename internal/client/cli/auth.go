package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptCredentials asks for an email and a password. The caller owns the
// returned password bytes and must wipe them when done.
func (a *App) promptCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts the user for an email and password and attempts to create
// a new account. When the directory is empty the server accepts the request
// without a token and makes the account an admin; afterwards registration
// requires being logged in as an admin.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.api.Register(ctx, email, string(password)); err != nil {
		log.Printf("Registration failed: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and authenticates against the
// server. On success the API client holds the token pair, the prompt shows
// the account email, and Mode switches to online.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login failed: %s", err.Error())
		return err
	}

	log.Printf("Login successful")
	a.userName = user.Email
	a.setMode(ModeOnline)
	return nil
}

// Logout drops the token pair held by the API client and clears the
// session identity.
func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	return nil
}
