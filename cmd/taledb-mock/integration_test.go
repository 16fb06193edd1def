package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taledb/taledb-go/internal/pkg/application/mockdb"
	"github.com/taledb/taledb-go/internal/pkg/presentation/api"
	"github.com/taledb/taledb-go/internal/pkg/infrastructure/router"
	"github.com/taledb/taledb-go/pkg/taledb/client"
	"github.com/taledb/taledb-go/pkg/taledb/query"
	"github.com/taledb/taledb-go/pkg/taledb/values"

	"github.com/matryer/is"
)

func TestIntegrateCreateAndGet(t *testing.T) {
	is, ctx, ts, c := setupIntegrationTest(t)
	defer ts.Close()

	result, err := c.Query(ctx, query.Create(query.Class("spells"), query.Obj(map[string]any{
		"data": map[string]any{"name": "fireball", "element": "fire"},
	})))
	is.NoErr(err)

	created := result.Resource.(map[string]any)
	ref := created["ref"].(values.Ref)

	result, err = c.Query(ctx, query.Get(ref))
	is.NoErr(err)

	doc := result.Resource.(map[string]any)
	is.True(doc["ref"].(values.Ref).Equal(ref))

	data := doc["data"].(map[string]any)
	is.Equal(data["name"], "fireball")
}

func TestIntegratePaginateOverAllPages(t *testing.T) {
	is, ctx, ts, c := setupIntegrationTest(t)
	defer ts.Close()

	for _, name := range []string{"fireball", "frostbolt", "haste"} {
		_, err := c.Query(ctx, query.Create(query.Class("spells"), query.Obj(map[string]any{
			"data": map[string]any{"name": name},
		})))
		is.NoErr(err)
	}

	refs := []values.Ref{}

	count, err := client.QueryPaged(ctx, c, query.Match(query.Index("all_spells")), func(ref map[string]string) {
		refs = append(refs, values.NewRef(ref["@ref"]))
	}, query.Size(2))

	is.NoErr(err)
	is.Equal(count, 3)
	is.Equal(len(refs), 3)
}

func TestIntegrateInvalidSecretIsRejected(t *testing.T) {
	is, ctx, ts, _ := setupIntegrationTest(t)
	defer ts.Close()

	c := client.NewDatabaseClient(ts.URL, client.Secret("wrong"))

	_, err := c.Query(ctx, query.Get(values.NewRef("classes", "spells", "42")))
	is.True(err != nil)
}

func setupIntegrationTest(t *testing.T) (*is.I, context.Context, *httptest.Server, client.DatabaseClient) {
	is := is.New(t)
	ctx := context.Background()

	cfg, err := mockdb.LoadConfiguration(strings.NewReader(seedConfig))
	is.NoErr(err)

	db := mockdb.New(cfg, mockdb.NewMemoryStore())

	r := router.New("taledb-mock-test")
	err = api.RegisterHandlers(ctx, r, strings.NewReader(authzPolicies), db)
	is.NoErr(err)

	ts := httptest.NewServer(r)

	return is, ctx, ts, client.NewDatabaseClient(ts.URL, client.Secret("integration-secret"))
}

const seedConfig string = `
databases:
  - name: prydain
    classes:
      - name: spells
    indexes:
      - name: all_spells
        class: spells
`

const authzPolicies string = `
package taledb.authz

default allow = false

allow {
	input.secret == "integration-secret"
}
`
