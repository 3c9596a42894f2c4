// Package translate defines the machine-translation boundary. Translation
// failures on individual items degrade to an empty string rather than
// failing the whole batch; only transport-level problems surface as errors.
package translate

import "context"

// Translator converts a batch of source strings into targetLanguage. The
// returned slice is parallel to texts: result[i] is the translation of
// texts[i], or "" when that item could not be translated.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLanguage string) ([]string, error)
}
