package codex

import "errors"

// ErrUnknownRecordType is returned when a caller requests a record type the
// system does not know how to load or normalize.
var ErrUnknownRecordType = errors.New("unknown record type")

// RecordType identifies a category of reference data. It is the primary
// cache key and selects the normalization step for raw records.
type RecordType string

const (
	TypeAncestries       RecordType = "ancestries"
	TypeClasses          RecordType = "classes"
	TypeSpells           RecordType = "spells"
	TypePerks            RecordType = "perks"
	TypeGear             RecordType = "gear"
	TypeAncestryFeatures RecordType = "ancestryFeatures"
	TypeClassFeatures    RecordType = "classFeatures"
	TypeStartingPacks    RecordType = "startingPacks"
)

// kinds maps each record type to the raw-record kind it selects.
var kinds = map[RecordType]string{
	TypeAncestries:       "ancestry",
	TypeClasses:          "class",
	TypeSpells:           "spell",
	TypePerks:            "perk",
	TypeGear:             "gear",
	TypeAncestryFeatures: "ancestryFeature",
	TypeClassFeatures:    "classFeature",
	TypeStartingPacks:    "startingPack",
}

// AllRecordTypes returns every known record type in a stable order.
func AllRecordTypes() []RecordType {
	return []RecordType{
		TypeAncestries,
		TypeClasses,
		TypeSpells,
		TypePerks,
		TypeGear,
		TypeAncestryFeatures,
		TypeClassFeatures,
		TypeStartingPacks,
	}
}

// Valid reports whether the record type is one the system knows about.
func (t RecordType) Valid() bool {
	_, ok := kinds[t]
	return ok
}

// Kind returns the raw-record kind this record type selects.
func (t RecordType) Kind() string {
	return kinds[t]
}

// Matches reports whether a raw record belongs to this record type.
func (t RecordType) Matches(raw *RawRecord) bool {
	return raw != nil && raw.Kind == kinds[t]
}

// RawRecord is the source-provided shape of a single record. It is owned by
// the source and read-only to this system. Only ID, Name and Kind are
// expected to be present; everything else is best effort.
type RawRecord struct {
	ID          string         `json:"id"`
	InternalID  string         `json:"_id"` // fallback when ID is absent
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Description string         `json:"description"`
	Image       string         `json:"img"`
	Sort        int            `json:"sort"`
	Flags       map[string]any `json:"flags"`
	System      map[string]any `json:"system"` // nested type-specific payload
}

// NormalizedRecord is the canonical internal shape. Exactly one of the typed
// detail pointers is non-nil for a fully normalized record; all of them are
// nil for a base-fields-only fallback record.
type NormalizedRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	SortOrder   int            `json:"sortOrder"`
	Flags       map[string]any `json:"flags"`
	SourceID    string         `json:"sourceId"`
	Type        RecordType     `json:"type"`

	Ancestry     *AncestryDetails     `json:"ancestry,omitempty"`
	Class        *ClassDetails        `json:"class,omitempty"`
	Spell        *SpellDetails        `json:"spell,omitempty"`
	Perk         *PerkDetails         `json:"perk,omitempty"`
	Gear         *GearDetails         `json:"gear,omitempty"`
	Feature      *FeatureDetails      `json:"feature,omitempty"`
	StartingPack *StartingPackDetails `json:"startingPack,omitempty"`
}

// AncestryDetails carries ancestry-specific fields.
type AncestryDetails struct {
	Size   string   `json:"size"`
	Speed  int      `json:"speed"`
	Traits []string `json:"traits"`
	Boosts []string `json:"boosts"`
}

// ClassDetails carries class-specific fields.
type ClassDetails struct {
	HitDie                string   `json:"hitDie"`
	KeyAbility            string   `json:"keyAbility"`
	Proficiencies         []string `json:"proficiencies"`
	SpellcastingTradition string   `json:"spellcastingTradition"`
}

// SpellDetails carries spell-specific fields. Damage is empty for spells
// that deal no damage.
type SpellDetails struct {
	Level      int      `json:"level"`
	School     string   `json:"school"`
	CastTime   string   `json:"castTime"`
	Range      string   `json:"range"`
	Damage     string   `json:"damage"`
	Components []string `json:"components"`
	Traditions []string `json:"traditions"`
}

// PerkDetails carries perk-specific fields.
type PerkDetails struct {
	Level         int      `json:"level"`
	Prerequisites []string `json:"prerequisites"`
	Traits        []string `json:"traits"`
}

// GearDetails carries gear-specific fields.
type GearDetails struct {
	Weight   float64 `json:"weight"`
	Cost     string  `json:"cost"`
	Rarity   string  `json:"rarity"`
	Category string  `json:"category"`
	Hands    int     `json:"hands"`
}

// FeatureDetails carries fields shared by ancestry and class features.
type FeatureDetails struct {
	Level       int    `json:"level"`
	FeatureType string `json:"featureType"`
	GrantedBy   string `json:"grantedBy"`
}

// StartingPackDetails carries starting-pack-specific fields.
type StartingPackDetails struct {
	Price    string   `json:"price"`
	Items    []string `json:"items"`
	ForClass string   `json:"forClass"`
}

// Attribute looks up a filterable field by its JSON name. It covers the base
// fields and the type-specific detail fields of the record's own type.
// The second return is false when the record has no such field.
func (r *NormalizedRecord) Attribute(key string) (any, bool) {
	switch key {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "type":
		return string(r.Type), true
	case "sourceId":
		return r.SourceID, true
	case "sortOrder":
		return r.SortOrder, true
	}

	switch {
	case r.Ancestry != nil:
		return r.Ancestry.attribute(key)
	case r.Class != nil:
		return r.Class.attribute(key)
	case r.Spell != nil:
		return r.Spell.attribute(key)
	case r.Perk != nil:
		return r.Perk.attribute(key)
	case r.Gear != nil:
		return r.Gear.attribute(key)
	case r.Feature != nil:
		return r.Feature.attribute(key)
	case r.StartingPack != nil:
		return r.StartingPack.attribute(key)
	}

	if v, ok := r.Flags[key]; ok {
		return v, true
	}
	return nil, false
}

func (d *AncestryDetails) attribute(key string) (any, bool) {
	switch key {
	case "size":
		return d.Size, true
	case "speed":
		return d.Speed, true
	case "traits":
		return d.Traits, true
	case "boosts":
		return d.Boosts, true
	}
	return nil, false
}

func (d *ClassDetails) attribute(key string) (any, bool) {
	switch key {
	case "hitDie":
		return d.HitDie, true
	case "keyAbility":
		return d.KeyAbility, true
	case "proficiencies":
		return d.Proficiencies, true
	case "spellcastingTradition":
		return d.SpellcastingTradition, true
	}
	return nil, false
}

func (d *SpellDetails) attribute(key string) (any, bool) {
	switch key {
	case "level":
		return d.Level, true
	case "school":
		return d.School, true
	case "castTime":
		return d.CastTime, true
	case "range":
		return d.Range, true
	case "damage":
		return d.Damage, true
	case "components":
		return d.Components, true
	case "traditions":
		return d.Traditions, true
	}
	return nil, false
}

func (d *PerkDetails) attribute(key string) (any, bool) {
	switch key {
	case "level":
		return d.Level, true
	case "prerequisites":
		return d.Prerequisites, true
	case "traits":
		return d.Traits, true
	}
	return nil, false
}

func (d *GearDetails) attribute(key string) (any, bool) {
	switch key {
	case "weight":
		return d.Weight, true
	case "cost":
		return d.Cost, true
	case "rarity":
		return d.Rarity, true
	case "category":
		return d.Category, true
	case "hands":
		return d.Hands, true
	}
	return nil, false
}

func (d *FeatureDetails) attribute(key string) (any, bool) {
	switch key {
	case "level":
		return d.Level, true
	case "featureType":
		return d.FeatureType, true
	case "grantedBy":
		return d.GrantedBy, true
	}
	return nil, false
}

func (d *StartingPackDetails) attribute(key string) (any, bool) {
	switch key {
	case "price":
		return d.Price, true
	case "items":
		return d.Items, true
	case "forClass":
		return d.ForClass, true
	}
	return nil, false
}
