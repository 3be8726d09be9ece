package service

import (
	"fmt"
	"strings"
)

// DecoratePrompts appends the configured house suffixes to the user's
// prompts and strips double quotes, which would break the backend command
// line. An empty negative prompt falls back to the suffix alone.
func DecoratePrompts(prompt, negativePrompt, suffix, negativeSuffix string) (string, string) {
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
	}

	decorated := clean(prompt)
	if suffix != "" {
		decorated = fmt.Sprintf("%s, %s", decorated, suffix)
	}

	var negDecorated string
	switch {
	case clean(negativePrompt) == "":
		negDecorated = negativeSuffix
	case negativeSuffix == "":
		negDecorated = clean(negativePrompt)
	default:
		negDecorated = fmt.Sprintf("%s, %s", clean(negativePrompt), negativeSuffix)
	}

	return decorated, negDecorated
}
