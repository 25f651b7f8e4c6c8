package conversation

import (
	"encoding/json"
	"testing"

	"timetrack/internal/core"
)

func TestStageJSONRoundTrip(t *testing.T) {
	for _, stage := range []Stage{Idle, AwaitingCategory, AwaitingDuration, AwaitingReportDate} {
		t.Run(stage.String(), func(t *testing.T) {
			in := State{UserID: 7, Stage: stage, PendingCategory: core.Work}
			b, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out State
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal %s: %v", b, err)
			}
			if out.Stage != stage || out.UserID != in.UserID {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		})
	}
}

func TestStageUnmarshalRejectsUnknownName(t *testing.T) {
	var s Stage
	if err := s.UnmarshalText([]byte("unknown")); err == nil {
		t.Fatal("expected an error for an unknown stage")
	}
	if err := json.Unmarshal([]byte(`{"stage":"awaiting_lunch"}`), &State{}); err == nil {
		t.Fatal("expected an error decoding an unknown stage")
	}
}
