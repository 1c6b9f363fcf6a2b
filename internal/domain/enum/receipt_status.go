package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptStatus represents the lifecycle status of a receipt
type ReceiptStatus string

const (
	ReceiptStatusDraft     ReceiptStatus = "draft"
	ReceiptStatusCompleted ReceiptStatus = "completed"
	ReceiptStatusPaid      ReceiptStatus = "paid"
	ReceiptStatusCancelled ReceiptStatus = "cancelled"
)

// ReceiptStatuses lists every valid status
var ReceiptStatuses = []ReceiptStatus{
	ReceiptStatusDraft,
	ReceiptStatusCompleted,
	ReceiptStatusPaid,
	ReceiptStatusCancelled,
}

// ParseReceiptStatus matches s case-insensitively against the closed set.
func ParseReceiptStatus(s string) (ReceiptStatus, error) {
	st := ReceiptStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid receipt status %q", s)
	}
	return st, nil
}

// ParseReceiptStatusOrDefault falls back to completed for unknown values.
func ParseReceiptStatusOrDefault(s string) ReceiptStatus {
	st, err := ParseReceiptStatus(s)
	if err != nil {
		return ReceiptStatusCompleted
	}
	return st
}

func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusDraft, ReceiptStatusCompleted, ReceiptStatusPaid, ReceiptStatusCancelled:
		return true
	}
	return false
}

func (s ReceiptStatus) String() string {
	return string(s)
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	st, err := ParseReceiptStatus(str)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ReceiptStatusCompleted
	case string:
		*s = ReceiptStatus(v)
	case []byte:
		*s = ReceiptStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into ReceiptStatus", value)
	}
	return nil
}
