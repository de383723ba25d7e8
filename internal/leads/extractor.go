package leads

import "strings"

// Markers whose presence anywhere in a message switches the conversation
// into slot-filling. The bare "задач" stem also catches inflected forms.
var fieldMarkers = []string{
	"имя:", "компания:", "телефон:", "задач",
	"name:", "company:", "phone:", "task:",
}

// HasFieldMarker reports whether the text mentions any intake label.
func HasFieldMarker(text string) bool {
	low := strings.ToLower(text)
	for _, marker := range fieldMarkers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// Extract parses labelled lines ("Имя: Анна" / "Name: Ann") into a partial
// lead. A line contributes a field when everything before its first colon
// is a known label, case-insensitively; other lines are ignored. The
// "бот для" label only fills the task field when no explicit task label
// already did.
func Extract(text string) Lead {
	var lead Lead
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		switch label {
		case "имя", "name":
			lead.Name = value
		case "компания", "company":
			lead.Company = value
		case "телефон", "phone":
			lead.Phone = value
		case "задача", "task":
			lead.Task = value
		case "нужен бот для", "бот для":
			if lead.Task == "" {
				lead.Task = value
			}
		}
	}
	return lead
}
