package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidHelpRequest wraps every validation failure of a help-request form.
var ErrInvalidHelpRequest = errors.New("invalid help request")

// InjuryStatus is the most severe injury reported in the household.
type InjuryStatus string

const (
	InjuryNone     InjuryStatus = "none"
	InjuryFracture InjuryStatus = "fracture"
	InjuryBleeding InjuryStatus = "bleeding"
	InjuryMultiple InjuryStatus = "multiple-injuries"
)

// Trimester of a reported pregnancy.
type Trimester string

const (
	TrimesterNone   Trimester = "none"
	TrimesterFirst  Trimester = "first"
	TrimesterSecond Trimester = "second"
	TrimesterThird  Trimester = "third"
)

// WaterLevel is the flood depth relative to an adult body.
type WaterLevel string

const (
	WaterKneeHigh  WaterLevel = "knee-high"
	WaterWaistHigh WaterLevel = "waist-high"
	WaterChestHigh WaterLevel = "chest-high"
	WaterNeckHigh  WaterLevel = "neck-high"
)

// StructuralDamage describes the state of the dwelling.
type StructuralDamage string

const (
	DamageNone      StructuralDamage = "none"
	DamageCracked   StructuralDamage = "cracked-walls"
	DamageCollapsed StructuralDamage = "collapsed-structure"
)

// RiskLevel is the display band of a priority score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskExtreme  RiskLevel = "Extreme"
)

// AreaOther selects the free-text OtherArea field.
const AreaOther = "other"

// HelpCity is appended to area names when geocoding.
const HelpCity = "Chennai"

// KnownAreas lists the neighbourhoods offered by the intake form.
var KnownAreas = []string{"Ayanavaram", "Guindy", "Avadi", "Anna Nagar", "T Nagar"}

var (
	injuryWeights = map[InjuryStatus]float64{
		InjuryNone:     0,
		InjuryFracture: 0.5,
		InjuryBleeding: 0.7,
		InjuryMultiple: 1,
	}
	waterWeights = map[WaterLevel]float64{
		WaterKneeHigh:  0.25,
		WaterWaistHigh: 0.5,
		WaterChestHigh: 0.75,
		WaterNeckHigh:  1,
	}
	damageWeights = map[StructuralDamage]float64{
		DamageNone:      0,
		DamageCracked:   0.5,
		DamageCollapsed: 1,
	}
	trimesters = []Trimester{TrimesterNone, TrimesterFirst, TrimesterSecond, TrimesterThird}
)

// HelpRequestForm is the household and hazard report submitted by a user.
type HelpRequestForm struct {
	Adults   int `json:"num_adults"`
	Children int `json:"num_children"`
	Elderly  int `json:"num_elderly"`

	WheelchairUser    bool `json:"wheelchair_user"`
	Blindness         bool `json:"blindness"`
	OtherDisabilities bool `json:"other_disabilities"`

	InjuryStatus       InjuryStatus `json:"injury_status"`
	Diabetes           bool         `json:"diabetes"`
	HeartDisease       bool         `json:"heart_disease"`
	DialysisDependent  bool         `json:"dialysis_dependent"`
	Pregnant           bool         `json:"is_pregnant"`
	PregnancyTrimester Trimester    `json:"pregnancy_trimester"`

	DaysWithoutSupplies int  `json:"days_without_supplies"`
	MedicineNeeded      bool `json:"medicine_needed"`
	ToiletAccess        bool `json:"toilet_access"`

	WaterLevel        WaterLevel       `json:"water_level"`
	StructuralDamage  StructuralDamage `json:"structural_damage"`
	VehiclesSubmerged int              `json:"vehicles_submerged"`

	Area           string `json:"area"`
	OtherArea      string `json:"other_area,omitempty"`
	AdditionalInfo string `json:"additional_info"`
}

// HelpRequest is an accepted form with its derived fields.
type HelpRequest struct {
	ID int64 `json:"id,string"`
	HelpRequestForm

	DisabilityCount        int       `json:"disability_count"`
	ChronicConditionsCount int       `json:"chronic_conditions_count"`
	PriorityScore          float64   `json:"priority_score"`
	RiskLevel              RiskLevel `json:"risk_level"`

	Geo              *Coordinates `json:"geo,omitempty"`
	FormattedAddress string       `json:"formatted_address,omitempty"`
	GeoSource        string       `json:"geo_source,omitempty"` // "forward", "original", "failed"

	SubmittedAt time.Time `json:"submitted_at"`
}

// withDefaults fills unset enums with the values the form preselects.
func (f HelpRequestForm) withDefaults() HelpRequestForm {
	if f.InjuryStatus == "" {
		f.InjuryStatus = InjuryNone
	}
	if f.PregnancyTrimester == "" || !f.Pregnant {
		f.PregnancyTrimester = TrimesterNone
	}
	if f.WaterLevel == "" {
		f.WaterLevel = WaterKneeHigh
	}
	if f.StructuralDamage == "" {
		f.StructuralDamage = DamageNone
	}
	f.Area = strings.TrimSpace(f.Area)
	f.OtherArea = strings.TrimSpace(f.OtherArea)
	return f
}

// Validate reports the first invalid field, wrapped in ErrInvalidHelpRequest.
func (f HelpRequestForm) Validate() error {
	f = f.withDefaults()
	counts := []struct {
		name string
		v    int
	}{
		{"num_adults", f.Adults},
		{"num_children", f.Children},
		{"num_elderly", f.Elderly},
		{"days_without_supplies", f.DaysWithoutSupplies},
		{"vehicles_submerged", f.VehiclesSubmerged},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidHelpRequest, c.name)
		}
	}
	if _, ok := injuryWeights[f.InjuryStatus]; !ok {
		return fmt.Errorf("%w: unknown injury_status %q", ErrInvalidHelpRequest, f.InjuryStatus)
	}
	if _, ok := waterWeights[f.WaterLevel]; !ok {
		return fmt.Errorf("%w: unknown water_level %q", ErrInvalidHelpRequest, f.WaterLevel)
	}
	if _, ok := damageWeights[f.StructuralDamage]; !ok {
		return fmt.Errorf("%w: unknown structural_damage %q", ErrInvalidHelpRequest, f.StructuralDamage)
	}
	if !slices.Contains(trimesters, f.PregnancyTrimester) {
		return fmt.Errorf("%w: unknown pregnancy_trimester %q", ErrInvalidHelpRequest, f.PregnancyTrimester)
	}
	switch {
	case f.Area == "":
	case f.Area == AreaOther:
		if f.OtherArea == "" {
			return fmt.Errorf("%w: other_area is required when area is %q", ErrInvalidHelpRequest, AreaOther)
		}
	case !slices.Contains(KnownAreas, f.Area):
		return fmt.Errorf("%w: unknown area %q", ErrInvalidHelpRequest, f.Area)
	}
	return nil
}

// ResolvedArea returns the area name a responder should see.
func (f HelpRequestForm) ResolvedArea() string {
	f = f.withDefaults()
	if f.Area == AreaOther {
		return f.OtherArea
	}
	return f.Area
}

// DisabilityCount counts the reported disabilities.
func (f HelpRequestForm) DisabilityCount() int {
	return btoi(f.WheelchairUser) + btoi(f.Blindness) + btoi(f.OtherDisabilities)
}

// ChronicConditionsCount counts the reported chronic conditions.
func (f HelpRequestForm) ChronicConditionsCount() int {
	return btoi(f.Diabetes) + btoi(f.HeartDisease) + btoi(f.DialysisDependent)
}

// PriorityScore is the additive triage score. It mixes counts, severity weights and a
// supplies penalty without normalization, so it has no fixed upper bound and can be negative.
func PriorityScore(f HelpRequestForm) float64 {
	f = f.withDefaults()
	score := float64(f.Children)*0.25 +
		float64(f.Elderly)*0.30 +
		float64(f.DisabilityCount())*0.40 +
		injuryWeights[f.InjuryStatus]*0.35 +
		float64(f.ChronicConditionsCount())*0.30
	if f.Pregnant {
		score += 0.25
	}
	score += float64(3-f.DaysWithoutSupplies) * -0.15
	if f.MedicineNeeded {
		score += 0.20
	}
	if !f.ToiletAccess {
		score += 0.15
	}
	score += waterWeights[f.WaterLevel]*0.50 +
		damageWeights[f.StructuralDamage]*0.45 +
		float64(f.VehiclesSubmerged)*0.10
	return score
}

// RiskLevelFor bands a priority score for display.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.8:
		return RiskExtreme
	case score >= 0.6:
		return RiskHigh
	case score >= 0.4:
		return RiskModerate
	default:
		return RiskLow
	}
}

// PrepareHelpRequest validates a form and derives the stored record.
// The ID is left for the caller to assign.
func PrepareHelpRequest(f HelpRequestForm) (HelpRequest, error) {
	if err := f.Validate(); err != nil {
		return HelpRequest{}, err
	}
	area := f.ResolvedArea()
	f = f.withDefaults()
	f.Area = area
	f.OtherArea = ""

	score := PriorityScore(f)
	return HelpRequest{
		HelpRequestForm:        f,
		DisabilityCount:        f.DisabilityCount(),
		ChronicConditionsCount: f.ChronicConditionsCount(),
		PriorityScore:          score,
		RiskLevel:              RiskLevelFor(score),
		SubmittedAt:            clock.Now().UTC(),
	}, nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
