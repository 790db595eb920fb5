package amqp

import (
	"testing"
	"time"
)

func TestRecordChangeMessageRoundTrip(t *testing.T) {
	msg := NewRecordChangeMessage(OpUpdated, "rec_1", "user_1", 2024, 3)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := RecordChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != OpUpdated || got.RecordID != "rec_1" || got.OwnerID != "user_1" || got.Year != 2024 || got.Month != 3 {
		t.Fatalf("unexpected message: %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("timestamp not carried: %v", got.Timestamp)
	}
}

func TestRecordChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := RecordChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
