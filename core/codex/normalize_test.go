package codex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalizeSpellDefaults(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	// Spell record missing level, school, and damage entirely.
	raw := &RawRecord{
		ID:          "spell-1",
		Name:        "Light",
		Kind:        "spell",
		Description: "Sheds bright light.",
		System: map[string]any{
			"castTime":   "1 action",
			"components": []any{"V", "M"},
		},
	}

	rec := n.Normalize(TypeSpells, raw, "builtin")

	assert.Equal(t, "spell-1", rec.ID)
	assert.Equal(t, "Light", rec.Name)
	assert.Equal(t, "builtin", rec.SourceID)
	assert.Equal(t, TypeSpells, rec.Type)
	if assert.NotNil(t, rec.Spell) {
		assert.Equal(t, 0, rec.Spell.Level)
		assert.Equal(t, "Evocation", rec.Spell.School)
		assert.Equal(t, "", rec.Spell.Damage)
		assert.Equal(t, "1 action", rec.Spell.CastTime)
		assert.Equal(t, []string{"V", "M"}, rec.Spell.Components)
	}
}

func TestNormalizeBaseDefaults(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	tests := []struct {
		name string
		raw  RawRecord
		typ  RecordType
		want func(t *testing.T, rec NormalizedRecord)
	}{
		{
			name: "missing name and image",
			raw:  RawRecord{ID: "g-1", Kind: "gear"},
			typ:  TypeGear,
			want: func(t *testing.T, rec NormalizedRecord) {
				assert.Equal(t, DefaultName, rec.Name)
				assert.Equal(t, DefaultImage, rec.Image)
				assert.NotNil(t, rec.Flags)
				if assert.NotNil(t, rec.Gear) {
					assert.Equal(t, "Common", rec.Gear.Rarity)
					assert.Equal(t, float64(0), rec.Gear.Weight)
				}
			},
		},
		{
			name: "internal id fallback",
			raw:  RawRecord{InternalID: "abc123", Name: "Dwarf", Kind: "ancestry"},
			typ:  TypeAncestries,
			want: func(t *testing.T, rec NormalizedRecord) {
				assert.Equal(t, "abc123", rec.ID)
				if assert.NotNil(t, rec.Ancestry) {
					assert.Equal(t, "Medium", rec.Ancestry.Size)
					assert.Equal(t, 25, rec.Ancestry.Speed)
				}
			},
		},
		{
			name: "class hit die default",
			raw:  RawRecord{ID: "c-1", Name: "Wizard", Kind: "class"},
			typ:  TypeClasses,
			want: func(t *testing.T, rec NormalizedRecord) {
				if assert.NotNil(t, rec.Class) {
					assert.Equal(t, "d8", rec.Class.HitDie)
				}
			},
		},
		{
			name: "unknown type degrades to base fields",
			raw:  RawRecord{ID: "x-1", Name: "Mystery", Kind: "mystery"},
			typ:  RecordType("mysteries"),
			want: func(t *testing.T, rec NormalizedRecord) {
				assert.Equal(t, "x-1", rec.ID)
				assert.Nil(t, rec.Spell)
				assert.Nil(t, rec.Gear)
				assert.Nil(t, rec.Ancestry)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := n.Normalize(tt.typ, &tt.raw, "test")
			tt.want(t, rec)
		})
	}
}

func TestNormalizeTypedPayloads(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	raw := &RawRecord{
		ID:   "gear-sword",
		Name: "Longsword",
		Kind: "gear",
		Sort: 10,
		System: map[string]any{
			"weight":   float64(3),
			"cost":     "15 gp",
			"rarity":   "Uncommon",
			"category": "weapon",
			"hands":    float64(1), // JSON numbers decode as float64
		},
	}

	rec := n.Normalize(TypeGear, raw, "srd")
	if assert.NotNil(t, rec.Gear) {
		assert.Equal(t, float64(3), rec.Gear.Weight)
		assert.Equal(t, "15 gp", rec.Gear.Cost)
		assert.Equal(t, "Uncommon", rec.Gear.Rarity)
		assert.Equal(t, "weapon", rec.Gear.Category)
		assert.Equal(t, 1, rec.Gear.Hands)
	}
	assert.Equal(t, 10, rec.SortOrder)
}

func TestRecordTypeMatches(t *testing.T) {
	raw := &RawRecord{ID: "a", Kind: "ancestry"}
	assert.True(t, TypeAncestries.Matches(raw))
	assert.False(t, TypeClasses.Matches(raw))
	assert.False(t, TypeAncestries.Matches(nil))
}

func TestRecordTypeValid(t *testing.T) {
	for _, rt := range AllRecordTypes() {
		assert.True(t, rt.Valid(), string(rt))
	}
	assert.False(t, RecordType("potions").Valid())
}

func TestAttributeLookup(t *testing.T) {
	rec := NormalizedRecord{
		ID:   "s-1",
		Name: "Fireball",
		Type: TypeSpells,
		Spell: &SpellDetails{
			Level:  3,
			School: "Evocation",
		},
		Flags: map[string]any{"homebrew": true},
	}

	v, ok := rec.Attribute("level")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = rec.Attribute("name")
	assert.True(t, ok)
	assert.Equal(t, "Fireball", v)

	v, ok = rec.Attribute("homebrew")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = rec.Attribute("nonexistent")
	assert.False(t, ok)
}
