package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ministagram/internal/api"
	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// LoginForm is the sign-in page.
type LoginForm struct {
	deps  Deps
	log   *zap.Logger
	guard resource.Guard

	Username string
	Password string

	FieldErrors     model.FieldErrors
	GeneralError    string
	AccountNotFound bool
}

func NewLoginForm(d Deps) *LoginForm {
	return &LoginForm{deps: d, log: d.logger("LoginForm")}
}

// Submitting reports whether a sign-in is in flight.
func (f *LoginForm) Submitting() bool { return f.guard.Busy() }

// Submit validates locally and signs in. An unknown account sets AccountNotFound
// instead of the generic error so the caller can offer to create it.
func (f *LoginForm) Submit(ctx context.Context) error {
	return f.guard.Do(ctx, func(ctx context.Context) error {
		f.GeneralError = ""
		f.AccountNotFound = false
		f.FieldErrors = nil

		creds := model.LoginPayload{Username: f.Username, Password: f.Password}
		if err := creds.Validate(); err != nil {
			f.FieldErrors = asFieldErrors(err)
			return err
		}

		err := f.deps.Session.Login(ctx, creds)
		if err == nil {
			return nil
		}
		f.log.Info("sign in failed", zap.String("username", f.Username), zap.Error(err))
		if api.IsAccountNotFound(err) {
			f.AccountNotFound = true
			f.GeneralError = MsgAccountNotFound
			return err
		}
		f.GeneralError = MsgInvalidCredentials
		return err
	})
}

// SignupForm is the account creation page.
type SignupForm struct {
	deps  Deps
	log   *zap.Logger
	guard resource.Guard

	FullName       string
	Username       string
	Password       string
	ProfilePicURL  string
	PrivateAccount bool

	FieldErrors  model.FieldErrors
	GeneralError string
}

func NewSignupForm(d Deps) *SignupForm {
	return &SignupForm{deps: d, log: d.logger("SignupForm")}
}

func (f *SignupForm) Submitting() bool { return f.guard.Busy() }

// Submit validates, creates the account and signs in with it.
func (f *SignupForm) Submit(ctx context.Context) error {
	return f.guard.Do(ctx, func(ctx context.Context) error {
		f.GeneralError = ""
		f.FieldErrors = nil

		details := model.SignupPayload{
			FullName:       f.FullName,
			Username:       f.Username,
			Password:       f.Password,
			ProfilePicURL:  f.ProfilePicURL,
			PrivateAccount: f.PrivateAccount,
		}
		if err := details.Validate(); err != nil {
			f.FieldErrors = asFieldErrors(err)
			return err
		}

		if err := f.deps.Session.Signup(ctx, details); err != nil {
			f.log.Info("sign up failed", zap.String("username", f.Username), zap.Error(err))
			f.GeneralError = MsgSignupFailed
			return err
		}
		return nil
	})
}

func asFieldErrors(err error) model.FieldErrors {
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
