package transform

import "github.com/nodebooks/kernel/internal/model"

// Transform runs the Source Transformer's two passes (spec.md §4.6)
// over a cell's raw source, plus a TS-only normalization pass so goja
// can parse the result: strip TypeScript-only syntax, promote
// top-level declarations onto globalThis (Pass A), then wrap the
// remainder in a capturing async scope (Pass B).
func Transform(source string, lang model.Language) (string, error) {
	normalized := source
	if lang == model.LanguageTS {
		stripped, err := stripTSTypes(source)
		if err != nil {
			return "", err
		}
		normalized = stripped
	}

	promoted, err := promoteDeclarations(normalized)
	if err != nil {
		return "", err
	}

	wrapped, err := wrapCapture(promoted, lang)
	if err != nil {
		return "", err
	}

	return wrapped, nil
}
