package graphql

import (
	"log/slog"
	"net/http"

	"qatrack/internal/config"

	"github.com/graphql-go/handler"
)

// NewHandler creates a new GraphQL HTTP handler. The GraphiQL interface is
// only served when debug is enabled.
func NewHandler(settings *config.Settings, logger *slog.Logger) (http.Handler, error) {
	schema, err := NewSchema(settings, logger)
	if err != nil {
		return nil, err
	}

	h := handler.New(&handler.Config{
		Schema:   &schema.schema,
		Pretty:   true,
		GraphiQL: settings.Debug,
	})

	return h, nil
}
