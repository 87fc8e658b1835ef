package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/accountex-org/ash-sparql/config"
	"github.com/accountex-org/ash-sparql/query"
	"github.com/accountex-org/ash-sparql/vocabulary"
)

// TestIntegration_Fuseki runs SELECT and ASK queries against a real Fuseki
// endpoint started in a container
func TestIntegration_Fuseki(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, baseURL := startFusekiContainer(ctx, t)
	defer container.Terminate(ctx)

	loadFixtures(t, baseURL)

	settings := config.DefaultSettings()
	settings.Endpoint = baseURL + "/ds/query"
	settings.PrefixMap = map[string]string{
		"ex":   "http://example.org/",
		"foaf": "http://xmlns.com/foaf/0.1/",
	}

	c, err := New(settings)
	require.NoError(t, err)

	t.Run("select", func(t *testing.T) {
		records, err := c.Select(ctx, query.Query{
			Projection: []string{"name", "age"},
			Pattern: []query.Triple{
				{Subject: "?s", Predicate: "foaf:name", Object: "?name"},
				{Subject: "?s", Predicate: "foaf:age", Object: "?age"},
			},
		}, nil)
		require.NoError(t, err)
		require.Len(t, records, 2)

		byName := map[string]any{}
		for _, r := range records {
			name, ok := r["name"].(string)
			require.True(t, ok)
			byName[name] = r["age"]
		}
		assert.Equal(t, int64(30), byName["alice"])
		assert.Equal(t, int64(42), byName["bob"])
	})

	t.Run("select with limit", func(t *testing.T) {
		q := query.Query{
			Projection: []string{"name"},
			Pattern: []query.Triple{
				{Subject: "?s", Predicate: "foaf:name", Object: "?name"},
			},
		}.WithLimit(1)

		records, err := c.Select(ctx, q, nil)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("ask", func(t *testing.T) {
		present, err := c.Ask(ctx, query.Query{
			Pattern: []query.Triple{
				{Subject: "ex:alice", Predicate: "foaf:name", Object: "?name"},
			},
		})
		require.NoError(t, err)
		assert.True(t, present)

		absent, err := c.Ask(ctx, query.Query{
			Pattern: []query.Triple{
				{Subject: "ex:nobody", Predicate: "foaf:name", Object: "?name"},
			},
		})
		require.NoError(t, err)
		assert.False(t, absent)
	})

	t.Run("filter", func(t *testing.T) {
		records, err := c.Select(ctx, query.Query{
			Projection: []string{"name", "age"},
			Pattern: []query.Triple{
				{Subject: "?s", Predicate: "foaf:name", Object: "?name"},
				{Subject: "?s", Predicate: "foaf:age", Object: "?age"},
			},
			Filter: query.Compare("age", query.OpGreater, 35),
		}, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "bob", records[0]["name"])
	})
}

func startFusekiContainer(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	req := testcontainers.ContainerRequest{
		Image:        "secoresearch/fuseki:latest",
		ExposedPorts: []string{"3030/tcp"},
		Env: map[string]string{
			"ENABLE_UPDATE": "true",
		},
		WaitingFor: wait.ForListeningPort("3030/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "3030")
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, port.Port())

	// Wait for the dataset endpoint to answer
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/$/ping")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(250 * time.Millisecond)
	}

	return container, baseURL
}

func loadFixtures(t *testing.T, baseURL string) {
	t.Helper()

	update := fmt.Sprintf(`
PREFIX ex: <http://example.org/>
PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX xsd: <%s>
INSERT DATA {
  ex:alice foaf:name "alice" ; foaf:age "30"^^xsd:integer .
  ex:bob   foaf:name "bob"   ; foaf:age "42"^^xsd:integer .
}`, vocabulary.XSD)

	resp, err := http.PostForm(baseURL+"/ds/update", url.Values{"update": {update}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)
}
