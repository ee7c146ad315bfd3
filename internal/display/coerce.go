// Package display implements the Display & Console Pipeline (spec.md
// §4.9): console argument sanitization and formatting, the
// return-value coercion rules, and the streamed-display record shape
// shared by __display/__update_display.
//
// Every function here operates on values already Exported() from a
// goja.Value — plain Go nil/bool/float64/string/[]interface{}/
// map[string]interface{} — so the package has no goja dependency of
// its own; internal/execctx is the only caller that touches the VM.
package display

import (
	"encoding/json"
	"math"

	"github.com/nodebooks/kernel/internal/model"
)

// UIMimeType is the reserved MIME type a UI-marked or JSON-coerced
// display's payload is placed under (spec.md §4.9 rules 3–4).
const UIMimeType = "application/vnd.nodebooks.ui+json"

// UIMarkerKey is the property the @nodebooks/ui helper package sets
// on every value it produces, so the coercion pipeline can recognize
// it without a full schema walk.
const UIMarkerKey = "__nodebooksUI"

// knownUIKinds is every component discriminator spec.md §6 documents
// under the reserved UI MIME type.
var knownUIKinds = map[string]bool{
	"text": true, "markdown": true, "html": true, "json": true,
	"table": true, "dataSummary": true, "image": true,
	"vegaLite": true, "plotly": true, "heatmap": true, "network": true,
	"plot3d": true, "map": true, "geojson": true,
	"alert": true, "badge": true, "metric": true, "progress": true,
	"spinner": true, "container": true,
	"button": true, "slider": true, "textInput": true,
}

// IsUIMarked reports whether v carries the UI helper marker and a
// recognized "ui" kind (spec.md §4.9 rule 3's "bearing a marker
// property and validating against the UI display schema").
func IsUIMarked(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	marked, _ := m[UIMarkerKey].(bool)
	if !marked {
		return nil, false
	}
	kind, _ := m["ui"].(string)
	if !knownUIKinds[kind] {
		return nil, false
	}
	return m, true
}

// IsJSONShaped reports whether v is plain JSON-shaped data (spec.md
// §4.9 rule 4): null, booleans, finite numbers, strings, arrays, or
// plain objects, recursively.
func IsJSONShaped(v interface{}) bool {
	switch t := v.(type) {
	case nil, bool, string:
		return true
	case float64:
		return !math.IsInf(t, 0) && !math.IsNaN(t)
	case int, int32, int64:
		return true
	case []interface{}:
		for _, e := range t {
			if !IsJSONShaped(e) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, e := range t {
			if !IsJSONShaped(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CoerceCaptured implements the return-value coercion rules (spec.md
// §4.9). isUndefined and isCallable are decided by the caller, which
// holds the original goja.Value; everything else operates on v, the
// value already Exported(). ok is false for rules 1–2 (no display).
func CoerceCaptured(v interface{}, isUndefined, isCallable bool) (model.OutputRecord, bool) {
	if isUndefined || isCallable {
		return model.OutputRecord{}, false
	}

	if payload, ok := IsUIMarked(v); ok {
		stripped := make(map[string]interface{}, len(payload))
		for k, val := range payload {
			if k == UIMarkerKey {
				continue
			}
			stripped[k] = val
		}
		return model.OutputRecord{
			Kind: model.OutputDisplay,
			Data: map[string]any{UIMimeType: stripped},
		}, true
	}

	if IsJSONShaped(v) {
		rt, err := jsonRoundTrip(v)
		if err != nil {
			rt = v
		}
		return model.OutputRecord{
			Kind: model.OutputDisplay,
			Data: map[string]any{UIMimeType: map[string]any{"ui": "json", "json": rt}},
		}, true
	}

	return model.OutputRecord{
		Kind: model.OutputDisplay,
		Data: map[string]any{"text/plain": Inspect(v, 4, false)},
	}, true
}

// StreamedDisplay builds the Display/UpdateDisplay record for the
// __display and __update_display hooks: the same coercion pipeline as
// a captured return value, marked {streamed: true}, with
// update_display_data carrying the supplied display_id (spec.md §4.9).
func StreamedDisplay(v interface{}, isUndefined, isCallable, update bool, displayID string) (model.OutputRecord, bool) {
	rec, ok := CoerceCaptured(v, isUndefined, isCallable)
	if !ok {
		return model.OutputRecord{}, false
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]any{}
	}
	rec.Metadata["streamed"] = true
	if update {
		rec.Kind = model.OutputUpdateDisplay
		rec.Metadata["display_id"] = displayID
		rec.DisplayID = displayID
	}
	return rec, true
}

func jsonRoundTrip(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
