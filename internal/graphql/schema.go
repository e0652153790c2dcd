package graphql

import (
	"log/slog"

	"qatrack/internal/config"

	"github.com/graphql-go/graphql"
)

// Schema defines the GraphQL schema and resolvers
type Schema struct {
	schema   graphql.Schema
	settings *config.Settings
	logger   *slog.Logger
}

// databaseEntry pairs a database with its alias for resolvers
type databaseEntry struct {
	alias string
	db    config.Database
}

// NewSchema creates a read-only GraphQL schema over the given settings.
// Passwords are not part of the schema.
func NewSchema(settings *config.Settings, logger *slog.Logger) (*Schema, error) {
	s := &Schema{
		settings: settings.Redacted(),
		logger:   logger,
	}

	optionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DatabaseOption",
		Fields: graphql.Fields{
			"key": &graphql.Field{
				Type: graphql.String,
			},
			"value": &graphql.Field{
				Type: graphql.String,
			},
		},
	})

	databaseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Database",
		Fields: graphql.Fields{
			"alias": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).alias, nil
				},
			},
			"engine": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.Engine.String(), nil
				},
			},
			"vendor": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.Engine.Vendor(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.Name, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.User, nil
				},
			},
			"host": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.Host, nil
				},
			},
			"port": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.Port.String(), nil
				},
			},
			"connMaxAge": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(databaseEntry).db.ConnMaxAge, nil
				},
			},
			"options": &graphql.Field{
				Type:    graphql.NewList(optionType),
				Resolve: resolveOptions,
			},
		},
	})

	settingsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Settings",
		Fields: graphql.Fields{
			"debug": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
			},
			"timeZone": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
			},
			"allowedHosts": &graphql.Field{
				Type: graphql.NewList(graphql.String),
			},
			"databases": &graphql.Field{
				Type: graphql.NewList(databaseType),
				Args: graphql.FieldConfigArgument{
					"alias": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
				},
				Resolve: s.resolveDatabases,
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"settings": &graphql.Field{
				Type:    settingsType,
				Resolve: s.resolveSettings,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return nil, err
	}
	s.schema = schema

	return s, nil
}

// Do executes a query against the schema
func (s *Schema) Do(params graphql.Params) *graphql.Result {
	params.Schema = s.schema
	return graphql.Do(params)
}
