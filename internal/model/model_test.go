package model

import (
	"encoding/json"
	"testing"
)

func TestReasonMarshalsZeroValueAsNull(t *testing.T) {
	data, err := json.Marshal(ReasonNone)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Fatalf("expected null, got %s", data)
	}
}

func TestReasonMarshalsNonZeroAsString(t *testing.T) {
	data, err := json.Marshal(ReasonMemoryExceeded)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"memory_exceeded"` {
		t.Fatalf("expected quoted reason, got %s", data)
	}
}

func TestVerdictOmitsNullReasonInPlace(t *testing.T) {
	cost := 0.1
	v := Verdict{RunSuccess: true, Success: true, Reason: ReasonNone, Cost: &cost}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatal(err)
	}
	if round["reason"] != nil {
		t.Fatalf("expected reason field to be null, got %v", round["reason"])
	}
	if round["cost"] != cost {
		t.Fatalf("expected cost %v, got %v", cost, round["cost"])
	}
}

func TestVerdictCostNullWhenUnmeasured(t *testing.T) {
	v := Verdict{RunSuccess: false, Success: false, Reason: ReasonSandboxError}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatal(err)
	}
	if round["cost"] != nil {
		t.Fatalf("expected cost to be null for an unmeasured verdict, got %v", round["cost"])
	}
}
