package controllers

import (
	"github.com/shashiranjanraj/sweetshop/app/middleware"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !decodeOptional(c, &in) {
		return
	}

	user, token, err := ac.auth.Signup(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SetCookie(middleware.SessionCookie(token, ac.auth.Tokens().TTL()))
	c.Created("User signed up successfully", response.Payload{"user": user})
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !decodeOptional(c, &in) {
		return
	}

	user, token, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SetCookie(middleware.SessionCookie(token, ac.auth.Tokens().TTL()))
	c.OK("Login successful", response.Payload{"user": user})
}

// Logout expires the session cookie. It needs no session of its own.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.SetCookie(middleware.ClearedCookie())
	c.OK("Logout successful", nil)
}

func (ac *AuthController) Me(c *ctx.Context) {
	user, ok := middleware.UserFromCtx(c.Context())
	if !ok {
		c.Fail(services.ErrAuthRequired)
		return
	}
	c.OK("", response.Payload{"user": user})
}
