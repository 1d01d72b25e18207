package discord

// Friendly message constants for Discord responses
const (
	// Energy
	MsgInsufficientEnergy = "⚡ **Out of Energy!**\nEnergy regenerates over time. Come back later."

	// Battles
	MsgBattleNotFound     = "❓ **Battle Not Found**\nIt may have expired. Start a new one with /hunt."
	MsgBattleFinished     = "🏁 **Battle Over**\nThat beast has already been dealt with."
	MsgPrerequisiteNotMet = "🚫 **Can't Do That Yet**\nSomething is blocking this action."

	// Ruins
	MsgNoActiveRun  = "🗺️ **No Active Expedition**\nEnter a ruin first with /ruins enter."
	MsgRunActive    = "⛺ **Already Exploring**\nLeave your current expedition before starting another."
	MsgRoomSearched = "🕸️ **Nothing Left**\nYou already searched this room."

	// Content lookups
	MsgBeastNotFound = "❓ **Unknown Beast**\nMaybe check the spelling?"
	MsgRuinsNotFound = "❓ **Unknown Ruins**\nNo such place on the map."
	MsgChestNotFound = "❓ **Unknown Chest**\nNo chest tier by that name."
	MsgQuestNotFound = "❓ **Unknown Quest**\nNo quest by that name is active."

	MsgGenericError = "❌ Something went wrong."
)
