package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"1m30s"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != time.Second {
		t.Fatalf("expected 1s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_InvalidString(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatalf("expected error for invalid duration string")
	}
}

func TestDuration_UnmarshalJSON_InvalidType(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatalf("expected error for boolean value")
	}
}

func TestDuration_MarshalJSON_RoundTrip(t *testing.T) {
	d := Duration{Duration: 2*time.Hour + 45*time.Minute}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Duration
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Duration != d.Duration {
		t.Fatalf("round trip mismatch: expected %v, got %v", d.Duration, got.Duration)
	}
}
