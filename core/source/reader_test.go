package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"codex-manager/core/codex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource is a scripted in-memory source for reader tests.
type stubSource struct {
	id       string
	category string
	records  []codex.RawRecord
	err      error
	delay    time.Duration
}

func (s *stubSource) ID() string       { return s.id }
func (s *stubSource) Category() string { return s.category }

func (s *stubSource) ReadAll(ctx context.Context) ([]codex.RawRecord, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func spellRaw(id, name string) codex.RawRecord {
	return codex.RawRecord{ID: id, Name: name, Kind: "spell"}
}

func newTestReader(sources ...Source) *Reader {
	return NewReader(sources, codex.NewNormalizer(zap.NewNop()), zap.NewNop(), time.Second)
}

func allSources() InclusionPolicy {
	return InclusionPolicy{UseAll: true}
}

func TestLoadRecordTypeUnknownType(t *testing.T) {
	reader := newTestReader(&stubSource{id: "a", category: CategoryBuiltin})

	_, err := reader.LoadRecordType(context.Background(), allSources(), codex.RecordType("potions"))
	assert.ErrorIs(t, err, codex.ErrUnknownRecordType)
}

func TestLoadRecordTypePartialFailureIsolation(t *testing.T) {
	a := &stubSource{id: "a", category: CategoryBuiltin, records: []codex.RawRecord{spellRaw("s1", "Fireball")}}
	b := &stubSource{id: "b", category: CategoryDatabase, err: errors.New("connection refused")}
	c := &stubSource{id: "c", category: CategoryObject, records: []codex.RawRecord{spellRaw("s2", "Heal"), spellRaw("s3", "Light")}}

	reader := newTestReader(a, b, c)
	records, err := reader.LoadRecordType(context.Background(), allSources(), codex.TypeSpells)

	require.NoError(t, err)
	require.Len(t, records, 3)
	// Source enumeration order, then original order within each source.
	assert.Equal(t, "s1", records[0].ID)
	assert.Equal(t, "s2", records[1].ID)
	assert.Equal(t, "s3", records[2].ID)
	assert.Equal(t, "a", records[0].SourceID)
	assert.Equal(t, "c", records[1].SourceID)
}

func TestLoadRecordTypeAllSourcesFailed(t *testing.T) {
	cause := errors.New("boom")
	a := &stubSource{id: "a", category: CategoryBuiltin, err: cause}
	b := &stubSource{id: "b", category: CategoryDatabase, err: errors.New("down too")}

	reader := newTestReader(a, b)
	_, err := reader.LoadRecordType(context.Background(), allSources(), codex.TypeSpells)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.ErrorIs(t, err, cause)
}

func TestLoadRecordTypeExplicitEmptyPolicy(t *testing.T) {
	a := &stubSource{id: "a", category: CategoryBuiltin, records: []codex.RawRecord{spellRaw("s1", "Fireball")}}
	reader := newTestReader(a)

	policy := InclusionPolicy{UseAll: false, EnabledSourceIDs: []string{}}
	records, err := reader.LoadRecordType(context.Background(), policy, codex.TypeSpells)

	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestLoadRecordTypeAllowList(t *testing.T) {
	a := &stubSource{id: "a", category: CategoryBuiltin, records: []codex.RawRecord{spellRaw("s1", "Fireball")}}
	b := &stubSource{id: "b", category: CategoryObject, records: []codex.RawRecord{spellRaw("s2", "Heal")}}
	reader := newTestReader(a, b)

	policy := InclusionPolicy{UseAll: false, EnabledSourceIDs: []string{"b"}}
	records, err := reader.LoadRecordType(context.Background(), policy, codex.TypeSpells)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s2", records[0].ID)
}

func TestLoadRecordTypeFiltersByKind(t *testing.T) {
	a := &stubSource{id: "a", category: CategoryBuiltin, records: []codex.RawRecord{
		spellRaw("s1", "Fireball"),
		{ID: "g1", Name: "Longsword", Kind: "gear"},
		{ID: "c1", Name: "Wizard", Kind: "class"},
	}}
	reader := newTestReader(a)

	records, err := reader.LoadRecordType(context.Background(), allSources(), codex.TypeGear)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "g1", records[0].ID)
	if assert.NotNil(t, records[0].Gear) {
		assert.Equal(t, "Common", records[0].Gear.Rarity)
	}
}

func TestLoadRecordTypeTimeout(t *testing.T) {
	slow := &stubSource{id: "slow", category: CategoryObject, delay: time.Second, records: []codex.RawRecord{spellRaw("s1", "Fireball")}}
	reader := NewReader([]Source{slow}, codex.NewNormalizer(zap.NewNop()), zap.NewNop(), 20*time.Millisecond)

	_, err := reader.LoadRecordType(context.Background(), allSources(), codex.TypeSpells)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadTimeout)
}

func TestLoadRecordTypeTimeoutIsDegradedWithHealthySource(t *testing.T) {
	slow := &stubSource{id: "slow", category: CategoryObject, delay: time.Second}
	fast := &stubSource{id: "fast", category: CategoryBuiltin, records: []codex.RawRecord{spellRaw("s1", "Fireball")}}
	reader := NewReader([]Source{slow, fast}, codex.NewNormalizer(zap.NewNop()), zap.NewNop(), 20*time.Millisecond)

	records, err := reader.LoadRecordType(context.Background(), allSources(), codex.TypeSpells)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fast", records[0].SourceID)
}

func TestConfigPolicy(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want InclusionPolicy
	}{
		{
			name: "use all",
			cfg:  Config{UseAll: true},
			want: InclusionPolicy{UseAll: true, EnabledSourceIDs: []string{}},
		},
		{
			name: "explicit empty",
			cfg:  Config{UseAll: false, Enabled: ""},
			want: InclusionPolicy{UseAll: false, EnabledSourceIDs: []string{}},
		},
		{
			name: "comma separated with spaces",
			cfg:  Config{UseAll: false, Enabled: "builtin, database"},
			want: InclusionPolicy{UseAll: false, EnabledSourceIDs: []string{"builtin", "database"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Policy())
		})
	}
}

func TestInclusionPolicyAllows(t *testing.T) {
	assert.True(t, InclusionPolicy{UseAll: true}.Allows("anything"))
	assert.True(t, InclusionPolicy{EnabledSourceIDs: []string{"a", "b"}}.Allows("b"))
	assert.False(t, InclusionPolicy{EnabledSourceIDs: []string{"a"}}.Allows("b"))
	assert.False(t, InclusionPolicy{}.Allows("a"))
}
