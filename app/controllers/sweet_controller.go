package controllers

import (
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

type SweetController struct {
	sweets   *services.SweetService
	pageSize int
}

func NewSweetController(sweets *services.SweetService, pageSize int) *SweetController {
	return &SweetController{sweets: sweets, pageSize: pageSize}
}

// Index lists the catalogue. Pagination applies only when ?page is given.
func (sc *SweetController) Index(c *ctx.Context) {
	sc.list(c, repositories.SweetFilter{})
}

// Search lists sweets matching ?name, ?category, ?minPrice and ?maxPrice.
func (sc *SweetController) Search(c *ctx.Context) {
	filter, err := services.ParseFilter(c.R.URL.Query())
	if err != nil {
		c.Fail(err)
		return
	}
	sc.list(c, filter)
}

func (sc *SweetController) list(c *ctx.Context, filter repositories.SweetFilter) {
	page, err := services.ParsePage(c.R.URL.Query(), sc.pageSize)
	if err != nil {
		c.Fail(err)
		return
	}

	res, err := sc.sweets.List(c.Context(), filter, page)
	if err != nil {
		c.Fail(err)
		return
	}

	payload := response.Payload{"sweets": res.Sweets}
	if p := res.Pagination(); p != nil {
		payload["pagination"] = p
	}
	c.OK("", payload)
}

func (sc *SweetController) Show(c *ctx.Context) {
	sweet, err := sc.sweets.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", response.Payload{"sweet": sweet})
}

func (sc *SweetController) Store(c *ctx.Context) {
	var in services.CreateSweetInput
	if !decodeOptional(c, &in) {
		return
	}

	sweet, err := sc.sweets.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Sweet added successfully", response.Payload{"sweet": sweet})
}

func (sc *SweetController) Update(c *ctx.Context) {
	var in services.UpdateSweetInput
	if !decodeOptional(c, &in) {
		return
	}

	sweet, err := sc.sweets.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("Sweet updated successfully", response.Payload{"sweet": sweet})
}

func (sc *SweetController) Destroy(c *ctx.Context) {
	if err := sc.sweets.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.OK("Sweet deleted successfully", nil)
}
