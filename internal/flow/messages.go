package flow

// Canned bot texts.
const (
	greetingText = "Hello! I am the network operations assistant."

	menuText = "Please choose an option:\n" +
		"1. Look up an alarm\n" +
		"2. Documentation\n" +
		"3. Open incidents\n" +
		"4. Operational status\n" +
		"5. Active changes\n" +
		"6. Contact an administrator"

	welcomeBackText = "Welcome back! What else can I help you with?"

	invalidChoiceText = "Please choose an option from 1 to 6."

	askAlarmIDText = "Please enter the alarm number."

	askElementText = "Please enter the name of the element reporting the alarm."

	docsText = "Documentation:\n" +
		"- Alarm handling guide: /docs/alarms\n" +
		"- Escalation matrix: /docs/escalation\n" +
		"- Maintenance runbooks: /docs/runbooks\n" +
		"Type another option number to continue."

	incidentsText = "Open incidents:\n" +
		"- INC-2211 Degraded throughput on the north backbone (Major, in progress)\n" +
		"- INC-2214 Intermittent DNS timeouts in DC2 (Minor, monitoring)"

	statusText = "Operational status: core network, access network and data centres are operational. " +
		"Monitoring reports no service-affecting outage."

	changesText = "Active changes:\n" +
		"- CHG-0815 Firmware upgrade of edge routers, tonight 01:00-04:00\n" +
		"- CHG-0816 Power maintenance in DC1, Saturday 08:00-12:00"

	contactText = "Administrator on duty: noc-admin@example.com, phone +1 555 0100 (24/7)."

	alarmNotFoundText = "Sorry, I could not find that alarm on the given element. " +
		"You are back in the main menu; choose 1 to try another alarm."

	lookupUnavailableText = "Sorry, the alarm service is not responding right now. " +
		"You are back in the main menu; please try again in a moment."

	connectionErrorText = "Connection error, please retry."
)

// docsQuickReplies are offered under the documentation block.
//
//nolint:gochecknoglobals // Read-only suggestion list.
var docsQuickReplies = []string{"1", "3", "6"}
