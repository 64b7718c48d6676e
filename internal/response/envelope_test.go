package response

import (
	"encoding/json"
	"testing"
	"time"
)

func pinClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = prev })
}

func TestBuild(t *testing.T) {
	pinClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	env := Build(true, map[string]int{"a": 1}, "ok")
	if !env.Success {
		t.Error("expected success")
	}
	if env.Message != "ok" {
		t.Errorf("expected message 'ok', got %q", env.Message)
	}
	if env.Timestamp != "2024-01-01T00:00:00.000Z" {
		t.Errorf("unexpected timestamp %q", env.Timestamp)
	}
}

func TestBuild_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	pinClock(t, time.Date(2024, 6, 1, 14, 30, 15, 250_000_000, loc))

	env := Build(false, nil, "")
	if env.Timestamp != "2024-06-01T12:30:15.250Z" {
		t.Errorf("unexpected timestamp %q", env.Timestamp)
	}
}

func TestBuild_NilDataNormalized(t *testing.T) {
	var nilPtr *struct{ ID int }
	var nilSlice []string
	var nilMap map[string]int

	tests := []struct {
		name string
		data any
	}{
		{"untyped nil", nil},
		{"nil pointer", nilPtr},
		{"nil slice", nilSlice},
		{"nil map", nilMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Build(true, tt.data, "")
			if env.Data != nil {
				t.Errorf("expected nil data, got %#v", env.Data)
			}

			raw, err := json.Marshal(env)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if v, ok := decoded["data"]; !ok || v != nil {
				t.Errorf("expected data:null in JSON, got %s", raw)
			}
		})
	}
}

func TestSuccess_Defaults(t *testing.T) {
	env := Success(nil)
	if !env.Success {
		t.Error("expected success")
	}
	if env.Message != "Success" {
		t.Errorf("expected default message 'Success', got %q", env.Message)
	}

	env = Success([]int{1}, "Tasks retrieved successfully")
	if env.Message != "Tasks retrieved successfully" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestFailure_Defaults(t *testing.T) {
	env := Failure()
	if env.Success {
		t.Error("expected failure")
	}
	if env.Message != "Error" {
		t.Errorf("expected default message 'Error', got %q", env.Message)
	}
	if env.Data != nil {
		t.Errorf("expected nil data, got %v", env.Data)
	}

	env = FailureWithData("Failed to fetch task", map[string]string{"error": "boom"})
	if env.Success || env.Message != "Failed to fetch task" || env.Data == nil {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestTimestamp_FreshPerCall(t *testing.T) {
	first := Build(true, nil, "")
	second := Build(true, nil, "")

	a, err := time.Parse(TimestampLayout, first.Timestamp)
	if err != nil {
		t.Fatalf("parse first: %v", err)
	}
	b, err := time.Parse(TimestampLayout, second.Timestamp)
	if err != nil {
		t.Fatalf("parse second: %v", err)
	}
	if b.Before(a) {
		t.Errorf("timestamps went backwards: %s then %s", first.Timestamp, second.Timestamp)
	}
}
