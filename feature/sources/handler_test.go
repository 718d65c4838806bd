package sources_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"codex-manager/core/codex"
	"codex-manager/core/source"
	"codex-manager/feature/sources"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource is a canned source for diagnostics tests.
type stubSource struct {
	id       string
	category string
	records  []codex.RawRecord
	err      error
}

func (s *stubSource) ID() string       { return s.id }
func (s *stubSource) Category() string { return s.category }

func (s *stubSource) ReadAll(ctx context.Context) ([]codex.RawRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newTestApp(t *testing.T, srcs []source.Source, policy source.InclusionPolicy) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	reader := source.NewReader(srcs, codex.NewNormalizer(logger), logger, time.Second)

	app := fiber.New()
	feature := sources.NewFeature(reader, policy, logger)
	require.NoError(t, feature.Load(app))
	return app
}

func TestHandleListSources(t *testing.T) {
	srcs := []source.Source{
		&stubSource{id: "builtin", category: source.CategoryBuiltin, records: []codex.RawRecord{
			{ID: "fireball", Kind: "spell"},
			{ID: "dwarf", Kind: "ancestry"},
		}},
		&stubSource{id: "database", category: source.CategoryDatabase, err: errors.New("connection refused")},
	}
	app := newTestApp(t, srcs, source.InclusionPolicy{EnabledSourceIDs: []string{"builtin"}})

	resp, err := app.Test(httptest.NewRequest("GET", "/sources", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count   int                    `json:"count"`
		Sources []sources.SourceReport `json:"sources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Sources, 2)

	builtin := body.Sources[0]
	assert.Equal(t, "builtin", builtin.ID)
	assert.Equal(t, source.CategoryBuiltin, builtin.Category)
	assert.True(t, builtin.Enabled)
	assert.True(t, builtin.Reachable)
	assert.Equal(t, 2, builtin.Records)
	assert.Empty(t, builtin.Error)

	db := body.Sources[1]
	assert.Equal(t, "database", db.ID)
	assert.False(t, db.Enabled)
	assert.False(t, db.Reachable)
	assert.Zero(t, db.Records)
	assert.Contains(t, db.Error, "connection refused")
}

func TestHandleListSources_Empty(t *testing.T) {
	app := newTestApp(t, nil, source.InclusionPolicy{UseAll: true})

	resp, err := app.Test(httptest.NewRequest("GET", "/sources", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Zero(t, body.Count)
}
