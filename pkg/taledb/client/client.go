package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/taledb/taledb-go/pkg/taledb"
	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/query"
	"github.com/taledb/taledb-go/pkg/taledb/values"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type DatabaseClient interface {
	Query(ctx context.Context, expr query.Expr) (*taledb.QueryResult, error)
	Paginate(ctx context.Context, set query.Expr, options ...query.PaginateOptionFunc) (values.Page, error)
}

func Debug(enabled string) func(*dbClient) {
	return func(c *dbClient) {
		c.debug = (enabled == "true")
	}
}

// Secret sets the key the client presents to the database on each request.
func Secret(secret string) func(*dbClient) {
	return func(c *dbClient) {
		c.secret = secret
	}
}

func NewDatabaseClient(endpoint string, options ...func(*dbClient)) DatabaseClient {
	c := &dbClient{
		endpoint: endpoint,
		debug:    false,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeEndpoint string = "db-endpoint"
)

var tracer = otel.Tracer("taledb-client")

type dbClient struct {
	endpoint string
	secret   string
	debug    bool
}

func (c dbClient) Query(ctx context.Context, expr query.Expr) (*taledb.QueryResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "query",
		trace.WithAttributes(attribute.String(TraceAttributeEndpoint, c.endpoint)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(expr)
	if err != nil {
		err = fmt.Errorf("failed to encode query: %s (%w)", err.Error(), errors.ErrRequest)
		return nil, err
	}

	response, responseBody, err := c.callDatabase(ctx, http.MethodPost, "/", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromQueryErrors(response.StatusCode, responseBody)
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	result, err := taledb.NewQueryResultFromJSON(responseBody)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c dbClient) Paginate(ctx context.Context, set query.Expr, options ...query.PaginateOptionFunc) (values.Page, error) {
	result, err := c.Query(ctx, query.Paginate(set, options...))
	if err != nil {
		return values.Page{}, err
	}

	return result.Page()
}

func (c dbClient) callDatabase(ctx context.Context, method, path string, body io.Reader) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Add("Content-Type", "application/json")

	if c.secret != "" {
		req.Header.Add("Authorization", "Bearer "+c.secret)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}
	}

	return resp, respBody, nil
}
