package handler

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openAPISpec []byte

// LoadOpenAPI parses and validates the embedded API document.
func LoadOpenAPI() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// RequestValidator rejects requests that do not match the API document.
// Paths the document does not describe, such as /health, pass through.
func RequestValidator(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		MultiError:         true,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}
				respondWithError(w, logger, domain.NewInternalError(err))
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Debug("request rejected by openapi validation", "path", r.URL.Path, "error", err)
				respondWithJSON(w, http.StatusBadRequest, &APIError{
					Code:    domain.ErrCodeValidation,
					Message: "request does not match the API schema",
					Details: schemaDetails(err),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func schemaDetails(err error) map[string]string {
	details := map[string]string{}
	var multi openapi3.MultiError
	if !errors.As(err, &multi) {
		multi = openapi3.MultiError{err}
	}
	for i, e := range multi {
		key := fmt.Sprintf("error_%d", i)
		var reqErr *openapi3filter.RequestError
		if errors.As(e, &reqErr) && reqErr.Parameter != nil {
			key = reqErr.Parameter.Name
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(e, &schemaErr) {
			if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
				key = joinPointer(ptr)
			}
			details[key] = schemaErr.Reason
			continue
		}
		details[key] = e.Error()
	}
	return details
}

func joinPointer(ptr []string) string {
	out := ptr[0]
	for _, p := range ptr[1:] {
		out += "." + p
	}
	return out
}
