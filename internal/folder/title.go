package folder

import "strings"

// ValidateTitle returns ErrTitleRequired when the trimmed title is empty.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// ClampTitle cuts title down to MaxTitleLength runes.
func ClampTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}
	return string(runes[:MaxTitleLength])
}
