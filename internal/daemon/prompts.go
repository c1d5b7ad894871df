package daemon

import "strings"

// validateStopKeywords halt binary validation as soon as the model commits to
// an answer. Matched case-insensitively over the accumulated output.
var validateStopKeywords = []string{"yes", "no", "valid", "invalid", "true", "false"}

// validatePrompt wraps a statement in the permissive-validator instruction.
// The validator is deliberately biased toward YES: the jury exists to filter
// out the truly absurd, not to second-guess creativity.
func validatePrompt(statement string) string {
	var b strings.Builder
	b.WriteString("You are an ultra-permissive game master validator. Encourage player imagination and say YES to almost everything.\n\n")
	b.WriteString("DATA TO ANALYZE:\n")
	b.WriteString(statement)
	b.WriteString("\n\nSay NO only if the action is completely nonsensical, explicitly breaks fundamental game rules, or is entirely unrelated to the game context.\n")
	b.WriteString("Say YES to creative actions, magical or fantasy elements, unusual abilities, inventive problem-solving, dramatic plot twists, crafting, exploration, dialogue, combat, and world-building. Default to YES when uncertain.\n\n")
	b.WriteString("Respond with exactly one word: YES or NO\n\n")
	b.WriteString("RESPONSE: ")
	return b.String()
}

// createPrompt builds the structured world-creation prompt around a user
// request. The format is fixed so downstream rule-based processing can rely
// on it.
func createPrompt(userPrompt string) string {
	var b strings.Builder
	b.WriteString("Create a complete structured game world for a hybrid AI-governed gaming system. This must be compatible with rule-based processing.\n\n")
	b.WriteString("REQUIRED FORMAT (follow exactly):\n\n")
	b.WriteString("Game Title: [Engaging title]\n\n")
	b.WriteString("World Description: [2-3 sentences describing setting and atmosphere]\n\n")
	b.WriteString("World Lore: [1-2 sentences of background that affects gameplay]\n\n")
	b.WriteString("Objectives: [Primary goal - clear and achievable]\n\n")
	b.WriteString("Win Conditions: [Specific conditions to win]\n\n")
	b.WriteString("Valid Actions: MOVE [direction], EXAMINE [object], TAKE [item], USE [item], TALK [character], ATTACK [target], CAST [spell], OPEN [container]\n\n")
	b.WriteString("Locations:\n- [3-5 connected locations, each with description, exits, items, NPCs]\n\n")
	b.WriteString("Items:\n- [Key items with descriptions and properties]\n\n")
	b.WriteString("Game Rules:\n- [Rules for movement, inventory, and winning or losing]\n\n")
	b.WriteString("Starting Location: [Location name]\n\n")
	b.WriteString("Starting Inventory: [List starting items]\n\n")
	b.WriteString("Starting Health: [Number/100]\n\n")
	b.WriteString("Current Situation: [Opening scenario that sets the stage]\n\n")
	b.WriteString("User request: ")
	b.WriteString(userPrompt)
	b.WriteString("\n\nCRITICAL: Follow the exact format above. Create a world that supports structured rule-based gameplay with bounded actions.")
	return b.String()
}

// advancePrompt builds the full initial-mode prompt embedding the world, the
// prior state, and the action.
func advancePrompt(action, priorState, world string) string {
	var b strings.Builder
	b.WriteString("You are a game state processor. Process player actions and return ONLY the updated player state in the exact format specified. ")
	b.WriteString("Do not produce explanations, reasoning, or any other text. Replace bracketed placeholders with actual values based on the action and game rules. ")
	b.WriteString("If the player repeats an action, return the same updated state again without changes.\n\n")
	b.WriteString("GAME WORLD:\n")
	b.WriteString(world)
	b.WriteString("\n\nCURRENT PLAYER STATE:\n")
	b.WriteString(priorState)
	b.WriteString("\n\nPLAYER ACTION: ")
	b.WriteString(action)
	b.WriteString("\n\nReturn the updated player state in this exact format:\n")
	b.WriteString(BeginMarker)
	b.WriteString("\nPlayer_Location: [location_name]\nPlayer_Health: [number]\nPlayer_Score: [number]\nPlayer_Inventory: [list]\nGame_Status: [active/won/lost]\nMessages: [\"narrative of what happens\"]\nTurn_Count: [number]\n")
	b.WriteString(EndMarker)
	return b.String()
}

// continuePrompt builds the minimal continuation-mode prompt: only the new
// action, appended to the already-primed conversation.
func continuePrompt(action string) string {
	var b strings.Builder
	b.WriteString("Player Action: ")
	b.WriteString(action)
	b.WriteString("\n\nUpdate the player state in the same format, between ")
	b.WriteString(BeginMarker)
	b.WriteString(" and ")
	b.WriteString(EndMarker)
	b.WriteString(".")
	return b.String()
}
