package prompts

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// defaultStructurePrompt is the structural-constraint block appended to
// every generated prompt. It keeps output flat, connected and high
// contrast; kept short so the theme text dominates.
const defaultStructurePrompt = "Flat, two-dimensional black and white pattern filling entire canvas edge-to-edge. " +
	"No perspective, no depth, no shadows, no 3D appearance, no separate objects. " +
	"Black pattern connects image edges; white material forms connected structure. " +
	"Bold, simplified style with large-scale elements (minimum 3-5 pixels). " +
	"High contrast only, no grayscale."

// LoadStructurePrompt reads the structural constraint text from the given
// file, falling back to the built-in default when path is empty or
// unreadable. The file is data, editable without code changes.
func LoadStructurePrompt(path string) string {
	if path == "" {
		return defaultStructurePrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("prompts: failed to read structure prompt %s, using default: %v", path, err)
		return defaultStructurePrompt
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		log.Printf("prompts: structure prompt %s is empty, using default", path)
		return defaultStructurePrompt
	}
	return text
}

// Combine joins the theme prompt and the structural constraints into the
// final generation prompt. Theme text comes first so it dominates.
func Combine(themePrompt, structurePrompt string) string {
	return fmt.Sprintf("%s. %s", strings.TrimSuffix(strings.TrimSpace(themePrompt), "."), structurePrompt)
}
