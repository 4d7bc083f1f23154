package track

import "strings"

// MaxNameLength is the maximum length of an activity name in runes.
const MaxNameLength = 64

// Presets are the activities seeded into a freshly created database.
// Colors are ARGB values.
var Presets = []Activity{
	{Name: "Work", Color: -48511, Icon: "work"},        // 0xFFFF4081 pink
	{Name: "Sleep", Color: -12627531, Icon: "night"},   // 0xFF3F51B5 indigo
	{Name: "Hobby", Color: -11751600, Icon: "star"},    // 0xFF4CAF50 green
	{Name: "Family", Color: -26624, Icon: "group"},     // 0xFFFF9800 orange
	{Name: "Sport", Color: -14575885, Icon: "running"}, // 0xFF2196F3 blue
}

// ValidateName checks an activity name: trimmed, non-empty, within length.
// Returns the trimmed name.
func ValidateName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if len([]rune(name)) > MaxNameLength {
		return "", false
	}
	return name, true
}
