// Package controllers adapts HTTP requests to the services.
package controllers

import (
	"errors"

	"github.com/shashiranjanraj/sweetshop/pkg/bind"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
)

// decodeOptional decodes the JSON body into dest. An empty body leaves dest
// at its zero value so the service can report which fields are missing.
func decodeOptional(c *ctx.Context, dest any) bool {
	err := bind.Decode(c.W, c.R, dest)
	if err == nil || errors.Is(err, bind.ErrEmptyBody) {
		return true
	}
	c.BadBody(err)
	return false
}
