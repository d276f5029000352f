package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// MeasureFunc returns the rendered width of a string in the current
// font. The wrap algorithm is generic over it so tests can use a
// character-count measure.
type MeasureFunc func(s string) float64

// WrapText greedily wraps text to maxWidth: the current line is
// extended while its rendered width stays under the limit. A single
// word wider than the limit is hard-wrapped character by character.
// Paragraph breaks in the input are preserved as empty-line markers.
func WrapText(text string, maxWidth float64, measure MeasureFunc) []string {
	var lines []string
	for i, paragraph := range strings.Split(text, "\n") {
		if i > 0 {
			lines = append(lines, "")
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		current := ""
		for _, word := range words {
			if measure(word) > maxWidth {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				lines = append(lines, hardWrap(word, maxWidth, measure)...)
				continue
			}
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if measure(candidate) > maxWidth && current != "" {
				lines = append(lines, current)
				current = word
				continue
			}
			current = candidate
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// hardWrap splits one oversized word so every produced chunk fits.
// Each chunk takes at least one rune so the split always terminates.
func hardWrap(word string, maxWidth float64, measure MeasureFunc) []string {
	var chunks []string
	runes := []rune(word)
	current := ""
	for _, r := range runes {
		candidate := current + string(r)
		if measure(candidate) > maxWidth && current != "" {
			chunks = append(chunks, current)
			current = string(r)
			continue
		}
		current = candidate
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// WrapCacheKey identifies one wrap result by the full set of inputs
// that determine it.
func WrapCacheKey(text, font string, size, maxWidth float64, tag string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f|%.3f|%s", text, font, size, maxWidth, tag)))
	return hex.EncodeToString(sum[:])
}
