package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/taledb/taledb-go/internal/pkg/application/mockdb"
	"github.com/taledb/taledb-go/internal/pkg/presentation/api/auth"
	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/values"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("taledb-mock/api")

func RegisterHandlers(ctx context.Context, r *chi.Mux, policies io.Reader, db *mockdb.MockDB) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Post("/", NewQueryHandler(db, authenticator))

	return nil
}

func NewQueryHandler(db *mockdb.MockDB, authenticator auth.Enticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "execute-query")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		err = authenticator.CheckAccess(ctx, r)
		if err != nil {
			errors.WriteQueryError(w, nil, errors.NewUnauthorizedError("invalid database secret"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			errors.WriteQueryError(w, nil, errors.NewBadRequestError("failed to read request body"))
			return
		}

		expr, err := values.DecodeJSON(body)
		if err != nil {
			errors.WriteQueryError(w, nil, errors.NewBadRequestError("request body is not a valid query expression"))
			return
		}

		resource, err := db.Execute(ctx, expr)
		if err != nil {
			log.Warn("query failed", "err", err.Error())
			errors.WriteQueryError(w, nil, err)
			return
		}

		response, err := json.Marshal(map[string]any{"resource": resource})
		if err != nil {
			errors.WriteQueryError(w, nil, fmt.Errorf("failed to encode resource: %s (%w)", err.Error(), errors.ErrInternal))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(response)
	}
}
