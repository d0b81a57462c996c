package validation

import (
	"html"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxNameLength           = 100
	MaxDescriptionLength    = 255
	MaxRoomNameLength       = 64
	MaxEducationLevelLength = 50
	MaxEmojiLength          = 16
	PasswordMinLength       = 6
)

var (
	roomNameRe = regexp.MustCompile(`^[\p{L}\p{N}_\- ]+$`)
	strict     = bluemonday.StrictPolicy()
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= PasswordMinLength
}

// SanitizeText strips all markup and trims surrounding space. Entities are
// decoded again afterwards so plain text such as "a < b" survives intact.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// ValidateLength reports whether s is non-empty and at most max runes.
func ValidateLength(s string, max int) bool {
	n := utf8.RuneCountInString(s)
	return n > 0 && (max <= 0 || n <= max)
}

func ValidateName(name string) bool {
	return ValidateLength(strings.TrimSpace(name), MaxNameLength)
}

func ValidateDescription(description string) bool {
	return utf8.RuneCountInString(description) <= MaxDescriptionLength
}

func NormalizeRoomName(room string) string {
	return strings.TrimSpace(room)
}

func ValidateRoomName(room string) bool {
	return ValidateLength(room, MaxRoomNameLength) && roomNameRe.MatchString(room)
}

// ValidateEmoji accepts a short symbol sequence. Whitespace and control
// characters are rejected; the symbol set itself is left to clients.
func ValidateEmoji(emoji string) bool {
	if !ValidateLength(emoji, MaxEmojiLength) {
		return false
	}
	for _, r := range emoji {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func ValidateEducationLevel(level string) bool {
	return ValidateLength(strings.TrimSpace(level), MaxEducationLevelLength)
}

func ValidateID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// TrimAndLimit trims s and cuts it to at most max runes.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
