package domain

import "strings"

// Intent is a category of user request recognized by keyword matching.
type Intent string

const (
	IntentLocation     Intent = "location"
	IntentRisk         Intent = "risk"
	IntentPreparedness Intent = "preparedness"
	IntentRecovery     Intent = "recovery"
	IntentAlert        Intent = "alert"
	IntentMenu         Intent = "menu"
	IntentFallback     Intent = "fallback"
)

// Rule binds an intent to its keywords and its reply template.
// A rule with no keywords matches every input.
type Rule struct {
	Intent   Intent
	Keywords []string
	Respond  func(LocationContext) Message
}

// Matches reports whether the lowercased input contains any keyword.
func (r Rule) Matches(lowered string) bool {
	if len(r.Keywords) == 0 {
		return true
	}
	for _, k := range r.Keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// rules is evaluated top to bottom; the order decides overlapping vocabulary.
var rules = []Rule{
	{Intent: IntentLocation, Keywords: []string{"location", "set my location"}, Respond: locationReply},
	{Intent: IntentRisk, Keywords: []string{"risk"}, Respond: riskReply},
	{Intent: IntentPreparedness, Keywords: []string{"prepare", "preparedness"}, Respond: preparednessReply},
	{Intent: IntentRecovery, Keywords: []string{"recovery", "after flood"}, Respond: recoveryReply},
	{Intent: IntentAlert, Keywords: []string{"alert"}, Respond: alertReply},
	{Intent: IntentMenu, Keywords: []string{"menu"}, Respond: func(LocationContext) Message { return Greeting() }},
	{Intent: IntentFallback, Respond: fallbackReply},
}

// Rules returns the ordered rule table. The last rule always matches.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Classify returns the first rule matching input. It never fails.
func Classify(input string) Rule {
	lowered := strings.ToLower(input)
	for _, r := range rules {
		if r.Matches(lowered) {
			return r
		}
	}
	return rules[len(rules)-1]
}

// Respond classifies input and renders the reply against loc.
func Respond(loc LocationContext, input string) (Intent, Message) {
	r := Classify(input)
	return r.Intent, r.Respond(loc)
}
