package models

import "database/sql/driver"

// Term is one academic period (semester, quatrimester) of a curriculum.
type Term struct {
	Number      int       `json:"number"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Subjects    []Subject `json:"subjects"`
	Credits     *int      `json:"credits,omitempty"`
}

// Terms is the ordered, JSONB-backed term list of a curriculum.
type Terms []Term

// Value implements driver.Valuer.
func (t Terms) Value() (driver.Value, error) {
	if t == nil {
		t = Terms{}
	}
	return marshalJSONB("terms", []Term(t))
}

// Scan implements sql.Scanner.
func (t *Terms) Scan(value interface{}) error {
	decoded := Terms{}
	if err := scanJSONB("terms", value, &decoded); err != nil {
		return err
	}
	*t = decoded
	return nil
}
