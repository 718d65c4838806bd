package codex_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"codex-manager/core/cache"
	corecodex "codex-manager/core/codex"
	"codex-manager/core/source"
	"codex-manager/feature/codex"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testLoader serves a fixed catalog and counts loads per record type.
type testLoader struct {
	records map[corecodex.RecordType][]corecodex.NormalizedRecord
	fail    map[corecodex.RecordType]error
	loads   int64
}

func (l *testLoader) LoadRecordType(ctx context.Context, recordType corecodex.RecordType) ([]corecodex.NormalizedRecord, error) {
	atomic.AddInt64(&l.loads, 1)
	if err, ok := l.fail[recordType]; ok {
		return nil, err
	}
	return l.records[recordType], nil
}

func spellRecord(id, name, school string, level int) corecodex.NormalizedRecord {
	return corecodex.NormalizedRecord{
		ID:    id,
		Name:  name,
		Type:  corecodex.TypeSpells,
		Flags: map[string]any{},
		Spell: &corecodex.SpellDetails{Level: level, School: school},
	}
}

func newTestApp(t *testing.T, loader cache.Loader) (*fiber.App, *cache.DataCache) {
	t.Helper()

	c := cache.New(loader, cache.Config{
		MaxEntryAgeSeconds: 300,
		MaxEntries:         10,
		Eviction:           cache.EvictionLRU,
		PreloadTypes:       "spells",
	}, zap.NewNop())

	app := fiber.New()
	feature := codex.NewFeature(c, zap.NewNop())
	require.NoError(t, feature.Load(app))
	return app, c
}

func TestHandleListTypes(t *testing.T) {
	app, _ := newTestApp(t, &testLoader{})

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/types", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Types []string `json:"types"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Types, 8)
	assert.Contains(t, body.Types, "spells")
	assert.Contains(t, body.Types, "startingPacks")
}

func TestHandleListRecords(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {
				spellRecord("fireball", "Fireball", "Evocation", 3),
				spellRecord("heal", "Heal", "Necromancy", 1),
			},
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Type    string                       `json:"type"`
		Count   int                          `json:"count"`
		Records []corecodex.NormalizedRecord `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "spells", body.Type)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "fireball", body.Records[0].ID)
}

func TestHandleListRecords_Filtered(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {
				spellRecord("fireball", "Fireball", "Evocation", 3),
				spellRecord("heal", "Heal", "Necromancy", 1),
				spellRecord("light", "Light", "Evocation", 0),
			},
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells?school=Evocation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count   int                          `json:"count"`
		Records []corecodex.NormalizedRecord `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	for _, record := range body.Records {
		assert.Equal(t, "Evocation", record.Spell.School)
	}
}

func TestHandleListRecords_MembershipFilter(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {
				spellRecord("fireball", "Fireball", "Evocation", 3),
				spellRecord("heal", "Heal", "Necromancy", 1),
				spellRecord("charm", "Charm", "Enchantment", 1),
			},
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells?school=Evocation,Necromancy", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestHandleListRecords_UnknownType(t *testing.T) {
	app, _ := newTestApp(t, &testLoader{})

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/potions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListRecords_AllSourcesFailed(t *testing.T) {
	loader := &testLoader{
		fail: map[corecodex.RecordType]error{
			corecodex.TypeSpells: source.ErrAllSourcesFailed,
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleGetRecord(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {
				spellRecord("fireball", "Fireball", "Evocation", 3),
			},
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells/fireball", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var record corecodex.NormalizedRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "Fireball", record.Name)
	require.NotNil(t, record.Spell)
	assert.Equal(t, 3, record.Spell.Level)
}

func TestHandleGetRecord_NotFound(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {spellRecord("fireball", "Fireball", "Evocation", 3)},
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells/meteor", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleWarm(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {spellRecord("fireball", "Fireball", "Evocation", 3)},
		},
	}
	app, c := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("POST", "/codex/warm", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestHandleStats(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {spellRecord("fireball", "Fireball", "Evocation", 3)},
		},
	}
	app, _ := newTestApp(t, loader)

	_, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats cache.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Entries)
	assert.Contains(t, stats.PerType, corecodex.TypeSpells)
}

func TestHandleMaintenance(t *testing.T) {
	app, _ := newTestApp(t, &testLoader{})

	resp, err := app.Test(httptest.NewRequest("POST", "/codex/maintenance", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expired":[],"evicted":[],"removed":0}`, string(body))
}

func TestHandleClearCache(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells: {spellRecord("fireball", "Fireball", "Evocation", 3)},
		},
	}
	app, c := newTestApp(t, loader)

	_, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)
	require.Equal(t, 1, c.Stats().Entries)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/codex/cache", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestHandleClearType(t *testing.T) {
	loader := &testLoader{
		records: map[corecodex.RecordType][]corecodex.NormalizedRecord{
			corecodex.TypeSpells:     {spellRecord("fireball", "Fireball", "Evocation", 3)},
			corecodex.TypeAncestries: {{ID: "dwarf", Name: "Dwarf", Type: corecodex.TypeAncestries}},
		},
	}
	app, c := newTestApp(t, loader)

	_, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/codex/ancestries", nil))
	require.NoError(t, err)
	require.Equal(t, 2, c.Stats().Entries)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/codex/cache/spells", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, c.Stats().Entries)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/codex/cache/potions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListRecords_LoaderError(t *testing.T) {
	loader := &testLoader{
		fail: map[corecodex.RecordType]error{
			corecodex.TypeSpells: errors.New("backend exploded"),
		},
	}
	app, _ := newTestApp(t, loader)

	resp, err := app.Test(httptest.NewRequest("GET", "/codex/spells", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
