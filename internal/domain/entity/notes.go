package entity

import "strings"

// AppendNote agrega note a existing en una línea nueva; no sobrescribe lo anterior.
func AppendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n" + note
}
