package natsadapter

import (
	"testing"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

func TestRankingSubject(t *testing.T) {
	tests := []struct {
		lat  float64
		want string
	}{
		{43.26, "radiodial.rankings.43.e1"},
		{-33.9, "radiodial.rankings.-33.e1"},
		{0, "radiodial.rankings.0.e1"},
	}
	for _, tt := range tests {
		e := &domain.RankingEvent{ID: "e1", Target: domain.Coordinate{Latitude: tt.lat}}
		if got := rankingSubject(e); got != tt.want {
			t.Errorf("rankingSubject(lat=%v) = %q, want %q", tt.lat, got, tt.want)
		}
	}
}
