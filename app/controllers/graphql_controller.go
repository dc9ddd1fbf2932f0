package controllers

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	gql "github.com/shashiranjanraj/sweetshop/pkg/graphql"
)

var sweetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Sweet",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Sweet).ID, nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"quantity":    &graphql.Field{Type: graphql.Int},
		"image":       &graphql.Field{Type: graphql.String},
		"rating":      &graphql.Field{Type: graphql.Float},
		"description": &graphql.Field{Type: graphql.String},
		"createdAt":   &graphql.Field{Type: graphql.DateTime},
		"updatedAt":   &graphql.Field{Type: graphql.DateTime},
	},
})

// publicError strips the cause so only the client-safe message is returned.
func publicError(err error) error {
	if ae, ok := apperr.As(err); ok && ae.Kind != apperr.Internal {
		return errors.New(ae.Message)
	}
	return errors.New("Internal server error")
}

func optionalFloat(args map[string]any, key string) *float64 {
	if v, ok := args[key].(float64); ok {
		return &v
	}
	return nil
}

// CatalogueSchema builds the read-only catalogue:
//
//	{ sweets(category: "Indian", maxPrice: 5) { id name price quantity } }
//	{ sweet(id: "...") { name description } }
func CatalogueSchema(sweets *services.SweetService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sweets": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(sweetType)),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"minPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"maxPrice": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					filter := repositories.SweetFilter{
						MinPrice: optionalFloat(p.Args, "minPrice"),
						MaxPrice: optionalFloat(p.Args, "maxPrice"),
					}
					filter.Name, _ = p.Args["name"].(string)
					filter.Category, _ = p.Args["category"].(string)

					res, err := sweets.List(p.Context, filter, repositories.Page{})
					if err != nil {
						return nil, publicError(err)
					}
					return res.Sweets, nil
				},
			},
			"sweet": &graphql.Field{
				Type: sweetType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					sweet, err := sweets.Get(p.Context, id)
					if err != nil {
						return nil, publicError(err)
					}
					return sweet, nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

// NewGraphQLHandler serves CatalogueSchema.
func NewGraphQLHandler(sweets *services.SweetService, maxBody int64) (http.HandlerFunc, error) {
	schema, err := CatalogueSchema(sweets)
	if err != nil {
		return nil, err
	}
	return gql.Handler(schema, maxBody), nil
}
