package identity

import "strings"

// ParseNameFromEmail derives a display name from an institutional email of
// the form firstname_secondname_lastname@domain: underscores separate words,
// hyphens are preserved within a word and each part is capitalized
// (e.g. "mary-jane" -> "Mary-Jane").
func ParseNameFromEmail(email string) string {
	if email == "" {
		return ""
	}
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return ""
	}

	var words []string
	for _, part := range strings.Split(local, "_") {
		if part == "" {
			continue
		}
		words = append(words, capitalizeWord(part))
	}
	return strings.Join(words, " ")
}

// capitalizeWord capitalizes each hyphen-separated segment of a word
func capitalizeWord(word string) string {
	var segments []string
	for _, seg := range strings.Split(word, "-") {
		if seg == "" {
			continue
		}
		segments = append(segments, strings.ToUpper(seg[:1])+strings.ToLower(seg[1:]))
	}
	return strings.Join(segments, "-")
}
