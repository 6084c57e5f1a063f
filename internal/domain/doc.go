// Package domain models the Nova flood-awareness assistant and the emergency
// help-request intake.
//
// # Conversation
//
// A conversation is an append-only transcript of [Message] values. Assistant
// messages carry follow-up option labels; choosing one submits the label
// verbatim, while typed text first passes through the [Normalizer].
//
// Classification is keyword based. The rule table returned by [Rules] is
// evaluated in a fixed order and the first rule whose keyword is a substring of
// the lowercased input wins:
//
//	location      "location", "set my location"
//	risk          "risk"
//	preparedness  "prepare", "preparedness"
//	recovery      "recovery", "after flood"
//	alert         "alert"
//	menu          "menu"
//	fallback      (always matches)
//
// The order matters. "Check another location" is a location request and
// "Preparation tips" matches nothing but the fallback, because "prepare" is not a
// substring of "preparation".
//
// Replies are templated from a [LocationContext]. Its emergency contacts always
// come from the default profile (Chennai, Tamil Nadu); resolving coordinates
// records where the user is but does not change the city the replies quote.
//
// # Normalization
//
// The embedded typos.yaml maps misspelled words to canonical ones. Matching is
// whole word and case-insensitive, and a corrected word keeps the casing pattern of
// the original ("FLOD" -> "FLOOD", "Flod" -> "Flood"). Because no canonical word is
// also a misspelling, normalizing twice is the same as normalizing once.
//
// # Help requests
//
// A [HelpRequestForm] describes a household in a flooded area. [PriorityScore]
// combines it into one triage number:
//
//	children*0.25 + elderly*0.30 + disabilities*0.40 + injury*0.35
//	+ chronic*0.30 + pregnant*0.25 - (3 - daysWithoutSupplies)*0.15
//	+ medicine*0.20 + noToilet*0.15 + water*0.50 + damage*0.45 + vehicles*0.10
//
//	injury:  none 0 | fracture 0.5 | bleeding 0.7 | multiple-injuries 1
//	water:   knee 0.25 | waist 0.5 | chest 0.75 | neck 1
//	damage:  none 0 | cracked-walls 0.5 | collapsed-structure 1
//
// The terms have different units and the sum is not normalized, so the score is
// only comparable between requests, not against an absolute scale. [RiskLevelFor]
// bands it for display: >=0.8 Extreme, >=0.6 High, >=0.4 Moderate, else Low.
package domain
