package curriculum

import (
	"fmt"
	"strconv"
)

// ValidationResult is the outcome of a validation pass. Errors are
// user-visible and ordered as they were found.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

var requiredFields = []string{"career", "title", "faculty", "terms"}

// ValidateDocument checks a parsed document against the structural schema.
// Every violation is collected; nothing short-circuits except that per-term
// checks are skipped when terms is not an array.
func ValidateDocument(doc interface{}) ValidationResult {
	pensum := object(doc)
	var errs []string

	for _, name := range requiredFields {
		if _, ok := field(pensum, name); !ok {
			errs = append(errs, "Missing required field: "+name)
		}
	}

	if electives, ok := field(pensum, "electives"); ok {
		if _, isArray := array(electives); !isArray {
			errs = append(errs, "Electives must be an array")
		}
	}

	if terms, ok := field(pensum, "terms"); ok {
		list, isArray := array(terms)
		if !isArray {
			errs = append(errs, "Terms must be an array")
		} else {
			for i, raw := range list {
				errs = append(errs, validateTerm(i, object(raw))...)
			}
		}
	}

	return newResult(errs)
}

func validateTerm(index int, term map[string]interface{}) []string {
	var errs []string

	number, hasNumber := field(term, "number")
	if !hasNumber {
		errs = append(errs, fmt.Sprintf("Term at index %d is missing a number", index))
	}
	if _, ok := field(term, "name"); !ok {
		errs = append(errs, fmt.Sprintf("Term at index %d is missing a name", index))
	}

	label := strconv.Itoa(index)
	if hasNumber {
		label = display(number, true)
	}

	rawSubjects, _ := field(term, "subjects")
	subjects, isArray := array(rawSubjects)
	if !isArray {
		return append(errs, fmt.Sprintf("Term %s is missing subjects array", label))
	}

	for j, raw := range subjects {
		errs = append(errs, validateSubject(j, label, object(raw))...)
	}
	return errs
}

func validateSubject(index int, termLabel string, subject map[string]interface{}) []string {
	var errs []string

	code, hasCode := field(subject, "code")
	if !hasCode {
		errs = append(errs, fmt.Sprintf("Subject at index %d in term %s is missing a code", index, termLabel))
	}
	if _, ok := field(subject, "name"); !ok {
		errs = append(errs, fmt.Sprintf("Subject at index %d in term %s is missing a name", index, termLabel))
	}
	// credits may legitimately be 0 or null; only an absent key is an error.
	if _, ok := subject["credits"]; !ok {
		codeLabel := ""
		if hasCode {
			codeLabel = display(code, true)
		}
		errs = append(errs, fmt.Sprintf("Subject %s in term %s is missing credits", codeLabel, termLabel))
	}

	rawCode, codePresent := subject["code"]
	for _, rel := range []struct{ key, label string }{
		{"prerequisites", "Prerequisites"},
		{"corequisites", "Corequisites"},
	} {
		if v, ok := field(subject, rel.key); ok {
			if _, isArray := array(v); !isArray {
				errs = append(errs, fmt.Sprintf("%s for subject %s must be an array", rel.label, display(rawCode, codePresent)))
			}
		}
	}
	return errs
}
