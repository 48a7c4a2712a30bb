// Package prompts builds the chat message arrays sent to the text
// generation service. Prompt text lives here so the services layer
// stays a plain transport.
package prompts

import (
	"fmt"
	"strings"

	"github.com/kotobamud/engine/pkg/chat"
	"github.com/kotobamud/engine/pkg/world"
)

// Required field sets for structured generation calls. A response
// missing any of these is treated as a generation failure.
var (
	LocationFields     = []string{"name", "japanese_name", "description"}
	ItemFields         = []string{"name", "name_english", "name_romaji", "description", "can_be_taken", "vocabulary"}
	NPCFields          = []string{"name", "name_english", "short_description", "role", "personality", "greeting", "vocabulary"}
	ConversationFields = []string{"response_japanese", "response_english"}
	ExamineFields      = []string{"description", "vocabulary"}
)

const (
	locationSystemPrompt = "You are a creative world-building assistant for a text adventure game."
	itemSystemPrompt     = "You are a creative item generator for a Japanese-themed text adventure game."
	npcSystemPrompt      = "You are a creative character generator for a Japanese-themed text adventure game."
	narratorSystemPrompt = "You are a descriptive text adventure game narrator specializing in Japanese settings."
	examineSystemPrompt  = "You are a creative writer describing item details for a language learning game. Output JSON."
)

// LocationMessages asks for a name/description pair for a new location.
func LocationMessages(setting string, coord world.Coordinate) []chat.ChatMessage {
	prompt := fmt.Sprintf(
		"You are creating locations for a text adventure game set in Japan. "+
			"Generate a distinct name (in English and simple Japanese, like 'Old Shrine Gate (古い神社の門)' or 'Riverside Market (川沿いの市場)') and a brief (1-2 sentence) description for a location. "+
			"The setting is: '%s'. The coordinates are (%d, %d). "+
			"The name and description should clearly reflect the given '%s'. Emphasize unique details and sensory information relevant to that setting. "+
			"AVOID overly similar names or descriptions for different locations (e.g., do not reuse adjectives like 'Whispering' or 'Quiet' excessively). "+
			`Respond ONLY in JSON format: {"name": "English Name", "japanese_name": "Japanese Name", "description": "Brief description."}`,
		setting, coord.X, coord.Y, setting)
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: locationSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}
}

// ItemMessages asks for one item fitting the location's setting.
func ItemMessages(setting string) []chat.ChatMessage {
	format := `{"name": "string (Japanese Name - Kanji/Kana)", "name_english": "string (English Translation/Meaning ONLY)", "name_romaji": "string (Romaji phonetic spelling ONLY)", "description": "string (1-2 sentence description)", "can_be_taken": boolean, "vocabulary": ["2-4 relevant Japanese words"]}`
	prompt := fmt.Sprintf(
		"You are creating an item for a text adventure game set in Japan. The item is found in a location with the setting: '%s'. "+
			"Generate a plausible and contextually relevant item. It could be common, unique, useful, or decorative. "+
			"Provide: 1. Japanese name (Kanji/Kana). 2. English translation/meaning ONLY for 'name_english'. 3. Romaji phonetic spelling ONLY for 'name_romaji'. "+
			"REQUIRED JSON output format: %s "+
			"Example: For お守り, name_english should be 'Amulet' or 'Charm', and name_romaji should be 'omamori'. Do NOT put Romaji in the name_english field. "+
			"Ensure the item details are consistent with the '%s'. 'can_be_taken' should usually be true unless it's a large fixture. Include relevant vocabulary.",
		setting, format, setting)
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: itemSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}
}

// NPCMessages asks for one character fitting the location's setting.
func NPCMessages(setting string) []chat.ChatMessage {
	format := `{"name": "string (Japanese Name - Kanji/Kana)", "name_english": "string (English Name)", "short_description": "string (1-2 sentence description)", "role": "string (e.g., Shopkeeper, Traveler, Student)", "personality": "string (e.g., Friendly, Grumpy, Shy)", "greeting": "string (Simple greeting in Japanese)", "vocabulary": ["2-4 relevant Japanese words"]}`
	prompt := fmt.Sprintf(
		"You are an NPC generator for a text adventure game set in Japan. The NPC is found in a location with the setting: '%s'. "+
			"Generate a plausible NPC fitting the setting. Provide: 1. Japanese name (Kanji/Kana). 2. English full name ONLY (e.g., Kenji Tanaka) for 'name_english'. "+
			"Provide a short description, role, personality, a simple Japanese greeting, and relevant vocabulary. "+
			"REQUIRED JSON output format: %s",
		setting, format)
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: npcSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}
}

// ExamineMessages asks for a close-up description of an item, including
// an invented Japanese inscription calibrated to the player's level.
func ExamineMessages(item *world.Item, jlptLevel string) []chat.ChatMessage {
	prompt := fmt.Sprintf(
		"You are describing an item examination in a text-based adventure game focused on Japanese learning. The player is examining a '%s' (%s). "+
			"The item's basic description is: '%s'. Relevant Japanese vocabulary: %s. "+
			"Write a detailed and engaging examination description (2-4 sentences). "+
			"Invent and include a short, relevant inscription, quote, maker's mark, or detail written in Japanese on the item, simple enough for a %s learner to potentially decipher. "+
			"Describe the appearance of the Japanese text (e.g., 'engraved in gold', 'written in elegant calligraphy'). "+
			"Do NOT just repeat the basic description. Add unique details discovered upon close examination. "+
			`Respond ONLY in JSON format: {"description": "Detailed Examination Description...", "vocabulary": ["relevant_word1", "relevant_word2"]} `+
			"Include 2-4 relevant Japanese vocabulary words from your description in the 'vocabulary' list.",
		item.NameEnglish, item.Name, item.Description, strings.Join(item.Vocabulary, ", "), jlptLevel)
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: examineSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}
}

// LookMessages asks for a single evocative paragraph weaving the
// setting, visible items and people together.
func LookMessages(setting string, itemNames, npcNames []string) []chat.ChatMessage {
	items := "nothing of note"
	if len(itemNames) > 0 {
		items = strings.Join(itemNames, ", ")
	}
	people := "no one else"
	if len(npcNames) > 0 {
		people = strings.Join(npcNames, ", ")
	}
	prompt := fmt.Sprintf(
		"You are describing a scene for a player in a text adventure game set in Japan. "+
			"The location's general setting is: '%s'. "+
			"The player sees the following items: %s. "+
			"The following people are present: %s.\n\n"+
			"Write a single, evocative paragraph (2-4 sentences) describing the scene. "+
			"Weave the setting, items, and people into the description naturally. "+
			"Focus on atmosphere and sensory details. Do NOT just list the items/people. "+
			"Do NOT include Japanese translations here. This is purely descriptive text.",
		setting, items, people)
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: narratorSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	}
}

// NPCSystemPrompt is the in-character system prompt for a conversation
// turn. The JSON contract and level calibration live here.
func NPCSystemPrompt(npc *world.NPC, jlptLevel string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"You are a helpful and knowledgeable AI assistant playing the role of %s in a Japanese language learning game set in Japan.\n"+
			"The user is a language learner at JLPT level %s.\n\n",
		npc.Name, jlptLevel)
	fmt.Fprintf(&sb,
		"Your character information:\n- Name: %s (%s)\n- Description: %s\n- Role: %s\n- Personality: %s\n\n",
		npc.Name, npc.NameEnglish, npc.Description, npc.Role, npc.Personality)
	sb.WriteString(
		"Your core task: engage the player in conversation, help them learn Japanese, and provide information based on your character's role. Be creative and informative.\n\n" +
			"Guidelines for your responses:\n" +
			"1. Respond in JSON: your entire response MUST be a single, valid JSON object with these exact keys: \"response_japanese\", \"response_english\", \"language_note\".\n" +
			"2. Dual language: provide your main response in Japanese (\"response_japanese\") and an accurate English translation (\"response_english\").\n")
	fmt.Fprintf(&sb,
		"3. Language level: adapt your Japanese vocabulary and grammar complexity to the user's %s level. Keep sentences relatively simple for lower levels.\n",
		jlptLevel)
	sb.WriteString(
		"4. Be informative and creative: when asked about places, history, or topics related to your role, generate plausible and culturally appropriate fictional details. Make it sound authentic to your character.\n" +
			"5. Be engaging: be friendly, encouraging, and maintain your character's personality.\n" +
			"6. Conciseness: keep responses focused, typically 1-3 sentences per language.\n" +
			"7. Language note: use the 'language_note' field for brief tips on vocabulary, grammar, cultural context, or gentle corrections. This field is optional but helpful.\n\n" +
			"Now, respond to the user's input based on these instructions.")
	return sb.String()
}
