package domain

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EmergencyContacts holds the phone numbers quoted in location replies.
type EmergencyContacts struct {
	Police           string `json:"police"`
	FloodControl     string `json:"flood_control"`
	GeneralEmergency string `json:"general_emergency"`
}

// LocationContext is the assistant's current belief about where the user is.
// Contacts come from the default profile and are not recomputed from coordinates.
type LocationContext struct {
	City              string            `json:"city"`
	Region            string            `json:"region"`
	Country           string            `json:"country"`
	Coordinates       *Coordinates      `json:"coordinates,omitempty"`
	ResolvedPlace     string            `json:"resolved_place,omitempty"`
	EmergencyContacts EmergencyContacts `json:"emergency_contacts"`
}

// DefaultLocation returns the profile every session starts with.
func DefaultLocation() LocationContext {
	return LocationContext{
		City:    "Chennai",
		Region:  "Tamil Nadu",
		Country: "India",
		EmergencyContacts: EmergencyContacts{
			Police:           "100",
			FloodControl:     "1913",
			GeneralEmergency: "108",
		},
	}
}

// Snapshot returns a deep copy safe to read while the original is updated.
func (l LocationContext) Snapshot() LocationContext {
	if l.Coordinates != nil {
		c := *l.Coordinates
		l.Coordinates = &c
	}
	return l
}

// Resolved reports whether coordinates have been obtained.
func (l LocationContext) Resolved() bool {
	return l.Coordinates != nil
}
