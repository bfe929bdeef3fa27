package curriculum

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/studypath/studypath-api/internal/models"
)

// ErrMalformedDocument is returned when raw import text is not valid JSON.
var ErrMalformedDocument = errors.New("malformed pensum document")

// ParseDocument decodes raw JSON into a generic document suitable for
// ValidateDocument and Normalize.
func ParseDocument(raw []byte) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// ToDocument converts any JSON-serialisable value into its generic document
// form.
func ToDocument(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return ParseDocument(data)
}

// ToPensum decodes a structurally valid document into the typed model.
func ToPensum(doc interface{}) (*models.Pensum, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var p models.Pensum
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode pensum: %w", err)
	}
	if p.Terms == nil {
		p.Terms = models.Terms{}
	}
	return &p, nil
}

// object returns v as a JSON object, or an empty one for anything else.
func object(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok && m != nil {
		return m
	}
	return map[string]interface{}{}
}

func array(v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	return a, ok
}

// truthy mirrors the loose truthiness the documents were authored against:
// absent, null, false, zero, NaN and "" are false; everything else,
// including empty arrays and objects, is true.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// field looks up key, returning the value only when it is truthy.
func field(obj map[string]interface{}, key string) (interface{}, bool) {
	v, ok := obj[key]
	if !ok || !truthy(v) {
		return nil, false
	}
	return v, true
}

// display renders v the way it is interpolated into user-visible messages.
func display(v interface{}, present bool) string {
	if !present {
		return "undefined"
	}
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = display(e, true)
			}
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		return "[object Object]"
	default:
		return fmt.Sprint(t)
	}
}

// toInt best-effort converts v into an integer.
func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
