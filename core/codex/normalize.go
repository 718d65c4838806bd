package codex

import (
	"codex-manager/core/utils"

	"go.uber.org/zap"
)

// Defaults applied by the normalizer when input fields are absent.
// Every default is part of the contract: a missing field must never cause a
// normalization failure, only a defined fallback value.
const (
	DefaultName   = "Unnamed Item"
	DefaultImage  = "icons/svg/item-bag.svg"
	DefaultSchool = "Evocation"
	DefaultHitDie = "d8"
	DefaultRarity = "Common"
	DefaultSize   = "Medium"
	DefaultSpeed  = 25
)

// Normalizer converts raw source records into the canonical shape.
// It is stateless apart from its logger and safe for concurrent use.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer that logs per-record degradations.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts one raw record into exactly one normalized record,
// tagging it with the source it came from. Records of an unrecognized type
// fall back to base fields only; the failure is logged, never returned.
func (n *Normalizer) Normalize(recordType RecordType, raw *RawRecord, sourceID string) NormalizedRecord {
	rec := n.base(recordType, raw, sourceID)

	switch recordType {
	case TypeAncestries:
		rec.Ancestry = ancestryDetails(raw.System)
	case TypeClasses:
		rec.Class = classDetails(raw.System)
	case TypeSpells:
		rec.Spell = spellDetails(raw.System)
	case TypePerks:
		rec.Perk = perkDetails(raw.System)
	case TypeGear:
		rec.Gear = gearDetails(raw.System)
	case TypeAncestryFeatures, TypeClassFeatures:
		rec.Feature = featureDetails(raw.System)
	case TypeStartingPacks:
		rec.StartingPack = startingPackDetails(raw.System)
	default:
		n.logger.Warn("No normalization step for record type, using base fields only",
			zap.String("record_type", string(recordType)),
			zap.String("record_id", rec.ID),
			zap.String("source_id", sourceID),
		)
	}

	return rec
}

// base extracts the fields shared by every record type, applying defaults.
func (n *Normalizer) base(recordType RecordType, raw *RawRecord, sourceID string) NormalizedRecord {
	id := raw.ID
	if id == "" {
		id = raw.InternalID
	}

	name := raw.Name
	if name == "" {
		name = DefaultName
	}

	image := raw.Image
	if image == "" {
		image = DefaultImage
	}

	flags := raw.Flags
	if flags == nil {
		flags = map[string]any{}
	}

	return NormalizedRecord{
		ID:          id,
		Name:        name,
		Description: raw.Description,
		Image:       image,
		SortOrder:   raw.Sort,
		Flags:       flags,
		SourceID:    sourceID,
		Type:        recordType,
	}
}

func ancestryDetails(system map[string]any) *AncestryDetails {
	d := &AncestryDetails{
		Size:   DefaultSize,
		Speed:  DefaultSpeed,
		Traits: []string{},
		Boosts: []string{},
	}
	if system == nil {
		return d
	}
	if v, ok := system["size"]; ok {
		d.Size = utils.ToString(v)
	}
	if v, ok := system["speed"]; ok {
		d.Speed = utils.ToInt(v)
	}
	if v, ok := system["traits"]; ok {
		d.Traits = utils.ToStringSlice(v)
	}
	if v, ok := system["boosts"]; ok {
		d.Boosts = utils.ToStringSlice(v)
	}
	return d
}

func classDetails(system map[string]any) *ClassDetails {
	d := &ClassDetails{
		HitDie:        DefaultHitDie,
		Proficiencies: []string{},
	}
	if system == nil {
		return d
	}
	if v, ok := system["hitDie"]; ok {
		d.HitDie = utils.ToString(v)
	}
	if v, ok := system["keyAbility"]; ok {
		d.KeyAbility = utils.ToString(v)
	}
	if v, ok := system["proficiencies"]; ok {
		d.Proficiencies = utils.ToStringSlice(v)
	}
	if v, ok := system["spellcasting"]; ok {
		d.SpellcastingTradition = utils.ToString(v)
	}
	return d
}

func spellDetails(system map[string]any) *SpellDetails {
	d := &SpellDetails{
		School:     DefaultSchool,
		Components: []string{},
		Traditions: []string{},
	}
	if system == nil {
		return d
	}
	if v, ok := system["level"]; ok {
		d.Level = utils.ToInt(v)
	}
	if v, ok := system["school"]; ok {
		d.School = utils.ToString(v)
	}
	if v, ok := system["castTime"]; ok {
		d.CastTime = utils.ToString(v)
	}
	if v, ok := system["range"]; ok {
		d.Range = utils.ToString(v)
	}
	if v, ok := system["damage"]; ok {
		d.Damage = utils.ToString(v)
	}
	if v, ok := system["components"]; ok {
		d.Components = utils.ToStringSlice(v)
	}
	if v, ok := system["traditions"]; ok {
		d.Traditions = utils.ToStringSlice(v)
	}
	return d
}

func perkDetails(system map[string]any) *PerkDetails {
	d := &PerkDetails{
		Prerequisites: []string{},
		Traits:        []string{},
	}
	if system == nil {
		return d
	}
	if v, ok := system["level"]; ok {
		d.Level = utils.ToInt(v)
	}
	if v, ok := system["prerequisites"]; ok {
		d.Prerequisites = utils.ToStringSlice(v)
	}
	if v, ok := system["traits"]; ok {
		d.Traits = utils.ToStringSlice(v)
	}
	return d
}

func gearDetails(system map[string]any) *GearDetails {
	d := &GearDetails{
		Rarity: DefaultRarity,
	}
	if system == nil {
		return d
	}
	if v, ok := system["weight"]; ok {
		d.Weight = utils.ToFloat(v)
	}
	if v, ok := system["cost"]; ok {
		d.Cost = utils.ToString(v)
	}
	if v, ok := system["rarity"]; ok {
		d.Rarity = utils.ToString(v)
	}
	if v, ok := system["category"]; ok {
		d.Category = utils.ToString(v)
	}
	if v, ok := system["hands"]; ok {
		d.Hands = utils.ToInt(v)
	}
	return d
}

func featureDetails(system map[string]any) *FeatureDetails {
	d := &FeatureDetails{}
	if system == nil {
		return d
	}
	if v, ok := system["level"]; ok {
		d.Level = utils.ToInt(v)
	}
	if v, ok := system["featureType"]; ok {
		d.FeatureType = utils.ToString(v)
	}
	if v, ok := system["grantedBy"]; ok {
		d.GrantedBy = utils.ToString(v)
	}
	return d
}

func startingPackDetails(system map[string]any) *StartingPackDetails {
	d := &StartingPackDetails{
		Items: []string{},
	}
	if system == nil {
		return d
	}
	if v, ok := system["price"]; ok {
		d.Price = utils.ToString(v)
	}
	if v, ok := system["items"]; ok {
		d.Items = utils.ToStringSlice(v)
	}
	if v, ok := system["forClass"]; ok {
		d.ForClass = utils.ToString(v)
	}
	return d
}
