package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	type body struct {
		AssignedTo Optional[string] `json:"assignedTo"`
	}

	var absent body
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.AssignedTo.Set {
		t.Fatalf("absent key must not be Set")
	}

	var null body
	if err := json.Unmarshal([]byte(`{"assignedTo": null}`), &null); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !null.AssignedTo.Set || null.AssignedTo.Valid {
		t.Fatalf("explicit null must be Set and not Valid: %+v", null.AssignedTo)
	}

	var value body
	if err := json.Unmarshal([]byte(`{"assignedTo": "abc"}`), &value); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !value.AssignedTo.Set || !value.AssignedTo.Valid || value.AssignedTo.Value != "abc" {
		t.Fatalf("value must be Set, Valid, and carried: %+v", value.AssignedTo)
	}
}

func TestEnumValidation(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidPriority(p) {
			t.Fatalf("%q should be a valid priority", p)
		}
	}
	for _, p := range []string{"", "low", "Urgent", "HIGH"} {
		if ValidPriority(p) {
			t.Fatalf("%q should be rejected", p)
		}
	}
	for _, s := range []string{StatusPending, StatusInProgress, StatusCompleted} {
		if !ValidStatus(s) {
			t.Fatalf("%q should be a valid status", s)
		}
	}
	for _, s := range []string{"", "pending", "Done", "in progress"} {
		if ValidStatus(s) {
			t.Fatalf("%q should be rejected", s)
		}
	}
}
