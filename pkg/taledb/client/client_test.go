package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	dberrors "github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/query"
	"github.com/taledb/taledb-go/pkg/taledb/values"

	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"

	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var anyInput = expects.AnyInput
var method = expects.RequestMethod
var path = expects.RequestPath
var body = expects.RequestBody

func TestQueryGet(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/"),
			body(`{"get":{"@ref":"classes/spells/42"}}`),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"resource":{"ref":{"@ref":"classes/spells/42"},"ts":{"@ts":"2023-01-01T00:00:00.000Z"},"data":{"name":"fireball"}}}`)),
		),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL(), Secret("secret"))

	result, err := c.Query(context.Background(), query.Get(values.NewRef("classes", "spells", "42")))
	is.NoErr(err)

	doc := result.Resource.(map[string]any)
	is.True(doc["ref"].(values.Ref).Equal(values.NewRef("classes/spells/42")))
	is.Equal(doc["ts"].(values.Timestamp).Value(), "2023-01-01T00:00:00.000Z")
}

func TestQueryHandlesNotFoundError(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusNotFound),
			response.Body([]byte(`{"errors":[{"position":[],"code":"instance not found","description":"document not found"}]}`)),
		),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL())

	_, err := c.Query(context.Background(), query.Get(values.NewRef("classes", "spells", "42")))

	is.True(err != nil)
	is.True(errors.Is(err, dberrors.ErrNotFound))
}

func TestQueryThrowsErrorOnNon200Success(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(response.Code(http.StatusNoContent)),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL())

	_, err := c.Query(context.Background(), query.Get(values.NewRef("classes", "spells", "42")))

	is.True(err != nil)
	is.Equal(err.Error(), "unexpected response code 204 (internal error)")
}

func TestQueryFailsOnMissingResource(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{}`)),
		),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL())

	_, err := c.Query(context.Background(), query.Get(values.NewRef("classes", "spells", "42")))

	is.True(err != nil)
	is.True(errors.Is(err, dberrors.ErrBadResponse))
}

func TestPaginate(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			body(`{"paginate":{"match":{"index":"all_spells"}},"size":2}`),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"resource":{"data":[{"@ref":"classes/spells/1"},{"@ref":"classes/spells/2"}],"after":{"@ref":"classes/spells/2"}}}`)),
		),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL())

	page, err := c.Paginate(context.Background(), query.Match(query.Index("all_spells")), query.Size(2))
	is.NoErr(err)

	is.Equal(len(page.Data), 2)
	is.True(page.Data[0].(values.Ref).Equal(values.NewRef("classes/spells/1")))
	is.True(page.After.(values.Ref).Equal(values.NewRef("classes/spells/2")))
}

func TestQueryPagedDecodesElements(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"resource":{"data":[{"name":"fireball"},{"name":"frostbolt"}]}}`)),
		),
	)
	defer s.Close()

	c := NewDatabaseClient(s.URL())

	type spell struct {
		Name string `json:"name"`
	}

	names := []string{}

	count, err := QueryPaged(context.Background(), c, query.Match(query.Index("all_spells")), func(s spell) {
		names = append(names, s.Name)
	})

	is.NoErr(err)
	is.Equal(count, 2)
	is.Equal(names, []string{"fireball", "frostbolt"})
}
