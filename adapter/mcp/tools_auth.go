package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

type signInInput struct {
	Email    string `json:"email" jsonschema:"required"`
	Password string `json:"password" jsonschema:"required"`
}

func registerAuthTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("auth.signin").
		Description("Sign in and store the session for later tool calls").
		Handler(func(ctx context.Context, input signInInput) (map[string]any, error) {
			if app.AuthService == nil || app.Session == nil {
				return nil, errors.New("auth service not configured")
			}
			session, err := app.AuthService.SignIn(ctx, input.Email, input.Password)
			if err != nil {
				return nil, describeErr(err)
			}
			if err := app.Session.Save(session.Token); err != nil {
				return nil, fmt.Errorf("failed to store session: %w", err)
			}
			return map[string]any{
				"user_id":    session.UserID,
				"email":      session.Email,
				"expires_at": session.ExpiresAt,
			}, nil
		})

	srv.Tool("auth.whoami").
		Description("Show the signed-in account id").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			return map[string]any{"user_id": owner.String()}, nil
		})

	srv.Tool("auth.signout").
		Description("End the stored session").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			if app.AuthService == nil || app.Session == nil {
				return nil, errors.New("auth service not configured")
			}
			token, err := app.Session.Load()
			if err != nil {
				return map[string]any{"signed_out": false}, nil
			}
			if err := app.AuthService.SignOut(ctx, token); err != nil {
				return nil, describeErr(err)
			}
			if err := app.Session.Clear(); err != nil {
				return nil, err
			}
			return map[string]any{"signed_out": true}, nil
		})

	return nil
}
