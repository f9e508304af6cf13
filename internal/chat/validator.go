package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageBytes caps the raw size of a message payload.
	MaxMessageBytes = 4096

	// MaxContentChars is the maximum character count of message content.
	MaxContentChars = 500

	// Username length bounds, applied after trimming.
	MinUsernameChars = 3
	MaxUsernameChars = 30
)

// ValidateUsername trims the username and checks it against the length
// bounds. It returns the trimmed value on success.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < MinUsernameChars {
		return "", fmt.Errorf("username must be at least %d characters", MinUsernameChars)
	}
	if n > MaxUsernameChars {
		return "", fmt.Errorf("username exceeds %d character limit", MaxUsernameChars)
	}
	if !utf8.ValidString(username) {
		return "", fmt.Errorf("username contains invalid UTF-8")
	}
	return username, nil
}

// ValidateContent trims message content and checks it against the size
// limits. It returns the trimmed value on success.
func ValidateContent(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return "", fmt.Errorf("message text is empty")
	}
	if len(text) > MaxMessageBytes {
		return "", fmt.Errorf("message exceeds %d byte limit", MaxMessageBytes)
	}
	if utf8.RuneCountInString(text) > MaxContentChars {
		return "", fmt.Errorf("message exceeds %d character limit", MaxContentChars)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("message contains invalid UTF-8")
	}
	return text, nil
}
