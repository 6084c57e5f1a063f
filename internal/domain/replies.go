package domain

import "fmt"

// Option labels offered by the assistant.
const (
	OptionLearnRisks        = "Learn about flood risks"
	OptionCheckPreparedness = "Check emergency preparedness"
	OptionLocalAlerts       = "Get local flood alerts"
	OptionRecoveryHelp      = "Post-flood recovery help"
	OptionSetLocation       = "Set my location"
	OptionUpdateLocation    = "Update location"
	OptionMainMenu          = "Back to main menu"
	OptionLocalRisks        = "Check local flood risks"
	OptionPreparationTips   = "Preparation tips"
	OptionEvacuationRoutes  = "Get evacuation routes"
	OptionEmergencyContacts = "Emergency contacts"
	OptionContactServices   = "Contact emergency services"
	OptionCleanUpTips       = "Clean-up tips"
	OptionAnotherLocation   = "Check another location"
)

const greetingText = "Hi! I'm Nova, your flood awareness assistant. How can I help you today?"

// Greeting is the first assistant message of every session and the menu reply.
func Greeting() Message {
	return AssistantMessage(greetingText,
		OptionLearnRisks,
		OptionCheckPreparedness,
		OptionLocalAlerts,
		OptionRecoveryHelp,
		OptionSetLocation,
	)
}

func locationReply(loc LocationContext) Message {
	c := loc.EmergencyContacts
	text := fmt.Sprintf("I'm currently set to provide information for %s, %s. Your local emergency contacts are:\n\n"+
		"Police: %s\nFlood Control: %s\nEmergency Services: %s",
		loc.City, loc.Region, c.Police, c.FloodControl, c.GeneralEmergency)
	return AssistantMessage(text, OptionUpdateLocation, OptionMainMenu)
}

func riskReply(loc LocationContext) Message {
	text := fmt.Sprintf("Based on your location in %s:\n\n"+
		"1. Types of Floods:\n- Flash floods\n- River floods\n- Coastal floods\n\n"+
		"2. Risk Factors:\n- Heavy rainfall\n- Snow melting\n- Storm surges\n- Urban development", loc.City)
	return AssistantMessage(text, OptionLocalRisks, OptionPreparationTips, OptionMainMenu)
}

func preparednessReply(LocationContext) Message {
	text := "Essential flood preparation steps:\n\n" +
		"1. Create an emergency kit with:\n" +
		"- Water and non-perishable food\n" +
		"- First aid supplies\n" +
		"- Flashlights and batteries\n" +
		"- Important documents in waterproof container\n\n" +
		"2. Know your evacuation route\n" +
		"3. Stay informed about weather updates\n" +
		"4. Have emergency contacts ready"
	return AssistantMessage(text, OptionEvacuationRoutes, OptionEmergencyContacts, OptionMainMenu)
}

func recoveryReply(LocationContext) Message {
	text := "Post-flood recovery guidance:\n\n" +
		"1. Safety First:\n- Wait for official clearance to return\n- Watch for hazards\n\n" +
		"2. Document Damage:\n- Take photos\n- Contact insurance\n\n" +
		"3. Clean-up:\n- Wear protective gear\n- Prevent mold growth\n\n" +
		"4. Seek assistance if needed"
	return AssistantMessage(text, OptionContactServices, OptionCleanUpTips, OptionMainMenu)
}

func alertReply(loc LocationContext) Message {
	text := fmt.Sprintf("Current flood alert status for %s:\nNo active flood warnings at this time.\n\n"+
		"Stay prepared by:\n1. Monitoring local weather\n2. Signing up for emergency alerts\n3. Keeping emergency supplies ready", loc.City)
	return AssistantMessage(text, OptionAnotherLocation, OptionPreparationTips, OptionMainMenu)
}

func fallbackReply(LocationContext) Message {
	return AssistantMessage("I can help you with flood awareness, preparation, and emergency response. "+
		"Could you please be more specific about what you'd like to know?", OptionMainMenu)
}
