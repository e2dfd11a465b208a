package board

import (
	"fmt"
	"time"
)

// Locale selects the language of every user-facing label.
type Locale string

const (
	English Locale = "en"
	Turkish Locale = "tr"
)

// ParseLocale returns the locale for s, falling back to English.
func ParseLocale(s string) Locale {
	if Locale(s) == Turkish {
		return Turkish
	}
	return English
}

// Messages holds the labels of one locale.
type Messages struct {
	Title       string
	Subtitle    string
	Heading     string // "%d" is the note count
	Placeholder string
	AddNote     string
	Save        string
	Cancel      string
	Edit        string
	Delete      string
	Created     string
	Edited      string
	Empty       string
	EmptyHint   string
	SwipeHint   string
	Today       string
	Yesterday   string
	DaysAgo     string // "%d" is the day count
}

var messages = map[Locale]Messages{
	English: {
		Title:       "My Daily Notes",
		Subtitle:    "Keep your thoughts on sticky notes!",
		Heading:     "My Notes (%d)",
		Placeholder: "What's on your mind today? Feelings, plans, anything at all...",
		AddNote:     "Add Note",
		Save:        "Save",
		Cancel:      "Cancel",
		Edit:        "Edit note",
		Delete:      "Delete note",
		Created:     "Created",
		Edited:      "Edited",
		Empty:       "No notes yet.",
		EmptyHint:   "Use the form to add your first note!",
		SwipeHint:   "Swipe left to edit, right to delete",
		Today:       "Today",
		Yesterday:   "Yesterday",
		DaysAgo:     "%d days ago",
	},
	Turkish: {
		Title:       "Günlük Notlarım",
		Subtitle:    "Düşüncelerini post-it tarzında kaydet!",
		Heading:     "Notlarım (%d)",
		Placeholder: "Bugün ne düşündün? Duygularını, planlarını veya aklına gelen her şeyi yazabilirsin...",
		AddNote:     "Not Ekle",
		Save:        "Kaydet",
		Cancel:      "İptal",
		Edit:        "Notu düzenle",
		Delete:      "Notu sil",
		Created:     "Oluşturuldu",
		Edited:      "Düzenlendi",
		Empty:       "Henüz not eklenmedi.",
		EmptyHint:   "İlk notunu eklemek için formu kullan!",
		SwipeHint:   "Düzenlemek için sola, silmek için sağa kaydır",
		Today:       "Bugün",
		Yesterday:   "Dün",
		DaysAgo:     "%d gün önce",
	},
}

// Messages returns the labels for l.
func (l Locale) Messages() Messages {
	if m, ok := messages[l]; ok {
		return m
	}
	return messages[English]
}

// HeadingFor renders the board heading with the note count.
func (m Messages) HeadingFor(count int) string {
	return fmt.Sprintf(m.Heading, count)
}

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// LongDate renders t as a long calendar date: "January 2, 2006" or "2 Ocak 2006".
func (l Locale) LongDate(t time.Time) string {
	if l == Turkish {
		return fmt.Sprintf("%d %s %d", t.Day(), turkishMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
