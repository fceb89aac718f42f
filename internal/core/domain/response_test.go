package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

func TestResponse_ZeroValueIsNotSuccess(t *testing.T) {
	var r domain.Response[[]domain.Place]
	if r.Success {
		t.Error("zero envelope must not be successful")
	}
	if r.Status == domain.StatusSuccess {
		t.Error("zero envelope must not carry StatusSuccess")
	}
	if r.Status != domain.StatusUnknownError {
		t.Errorf("expected unknown_error default, got %s", r.Status)
	}
}

func TestResponse_OKAndFail(t *testing.T) {
	ok := domain.OK("stream")
	if !ok.Success || ok.Status != domain.StatusSuccess || ok.Error != "" {
		t.Errorf("unexpected OK envelope: %+v", ok)
	}
	if ok.Err() != nil {
		t.Errorf("expected nil error, got %v", ok.Err())
	}

	fail := domain.Fail[[]domain.Channel](domain.StatusParseError, "No channels found")
	if fail.Success {
		t.Error("failed envelope reported success")
	}
	if fail.Payload != nil {
		t.Error("failed envelope must carry a zero payload")
	}

	var se *domain.StatusError
	if !errors.As(fail.Err(), &se) {
		t.Fatalf("expected *StatusError, got %T", fail.Err())
	}
	if se.Status != domain.StatusParseError || se.Message != "No channels found" {
		t.Errorf("unexpected status error: %+v", se)
	}
}

func TestFail_NeverProducesSuccess(t *testing.T) {
	r := domain.Fail[int](domain.StatusSuccess, "bogus")
	if r.Success || r.Status == domain.StatusSuccess {
		t.Errorf("Fail must not yield a success envelope: %+v", r)
	}
}

func TestForward_KeepsStatusAndMessage(t *testing.T) {
	src := domain.Fail[[]domain.Place](domain.StatusTimeout, "Request timed out")
	dst := domain.Forward[domain.NearbyChannels](src)
	if dst.Status != domain.StatusTimeout || dst.Error != "Request timed out" || dst.Success {
		t.Errorf("unexpected forwarded envelope: %+v", dst)
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(domain.Fail[string](domain.StatusInvalidResponse, "Empty search query"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"status":"invalid_response"`) {
		t.Errorf("status not rendered as text: %s", data)
	}

	var back domain.Response[string]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Status != domain.StatusInvalidResponse {
		t.Errorf("expected invalid_response, got %s", back.Status)
	}

	var st domain.Status
	if err := st.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for unknown status text")
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"Xr2bAhMf", true},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}
	for _, tt := range tests {
		if got := domain.IsValidID(tt.id); got != tt.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFromLonLat(t *testing.T) {
	c := domain.FromLonLat(10.0, 50.0)
	if c.Longitude != 10.0 || c.Latitude != 50.0 {
		t.Errorf("expected lon=10 lat=50, got %+v", c)
	}
}
