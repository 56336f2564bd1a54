package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlotUnavailability marks an entity as unavailable for one exam slot.
type SlotUnavailability struct {
	SlotID string `json:"slot_id" yaml:"slot_id" validate:"required"`
	Reason string `json:"reason" yaml:"reason"`
}

// SlotUnavailabilityList is stored as a JSONB array.
type SlotUnavailabilityList []SlotUnavailability

// Value implements driver.Valuer.
func (l SlotUnavailabilityList) Value() (driver.Value, error) {
	return marshalJSONColumn(l)
}

// Scan implements sql.Scanner.
func (l *SlotUnavailabilityList) Scan(src interface{}) error {
	return scanJSONColumn(src, l)
}

// Has reports whether the list holds a record for slotID.
func (l SlotUnavailabilityList) Has(slotID string) bool {
	for _, item := range l {
		if item.SlotID == slotID {
			return true
		}
	}
	return false
}

// SubjectIneligibility bars a student from sitting one subject.
type SubjectIneligibility struct {
	SubjectCode string `json:"subject_code" yaml:"subject_code" validate:"required"`
	Reason      string `json:"reason" yaml:"reason"`
}

// SubjectIneligibilityList is stored as a JSONB array.
type SubjectIneligibilityList []SubjectIneligibility

// Value implements driver.Valuer.
func (l SubjectIneligibilityList) Value() (driver.Value, error) {
	return marshalJSONColumn(l)
}

// Scan implements sql.Scanner.
func (l *SubjectIneligibilityList) Scan(src interface{}) error {
	return scanJSONColumn(src, l)
}

// Has reports whether the list holds a record for subjectCode.
func (l SubjectIneligibilityList) Has(subjectCode string) bool {
	for _, item := range l {
		if item.SubjectCode == subjectCode {
			return true
		}
	}
	return false
}

// StringList is stored as a JSONB array of strings.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return marshalJSONColumn(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return scanJSONColumn(src, l)
}

// Contains reports whether value is present.
func (l StringList) Contains(value string) bool {
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}

// IntList is stored as a JSONB array of integers.
type IntList []int

// Value implements driver.Valuer.
func (l IntList) Value() (driver.Value, error) {
	return marshalJSONColumn(l)
}

// Scan implements sql.Scanner.
func (l *IntList) Scan(src interface{}) error {
	return scanJSONColumn(src, l)
}

// DutyRecordList is stored as a JSONB array.
type DutyRecordList []DutyRecord

// Value implements driver.Valuer.
func (l DutyRecordList) Value() (driver.Value, error) {
	return marshalJSONColumn(l)
}

// Scan implements sql.Scanner.
func (l *DutyRecordList) Scan(src interface{}) error {
	return scanJSONColumn(src, l)
}

func marshalJSONColumn(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return []byte("[]"), nil
	}
	return raw, nil
}

func scanJSONColumn(src interface{}, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
