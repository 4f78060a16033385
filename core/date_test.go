package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := NewDate(2024, time.February, 29); !v.D.Equal(want.Time) {
		t.Errorf("Unmarshal() = %v; want %v", v.D, want)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got := string(data); got != `{"d":"2024-02-29"}` {
		t.Errorf("Marshal() = %s", got)
	}

	for _, in := range []string{`{"d":null}`, `{"d":""}`} {
		v.D = NewDate(2000, time.January, 1)
		if err := json.Unmarshal([]byte(in), &v); err != nil || !v.D.IsZero() {
			t.Errorf("Unmarshal(%s) = %v, %v; want zero date", in, v.D, err)
		}
	}
	if data, _ = json.Marshal(v); string(data) != `{"d":null}` {
		t.Errorf("Marshal(zero) = %s", data)
	}

	for _, in := range []string{`{"d":"2024-13-01"}`, `{"d":20240101}`, `{"d":"01/02/2024"}`} {
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Errorf("Unmarshal(%s) succeeded; want error", in)
		}
	}
}
