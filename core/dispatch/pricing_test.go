package dispatch

import (
	"testing"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
)

func TestPrice(t *testing.T) {
	start := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	hourly := 12.5
	withHourly := model.Pricing{DailyPrice: 240, HourlyPrice: &hourly}
	dailyOnly := model.Pricing{DailyPrice: 100}
	end := start.AddDate(0, 0, 3)

	tests := []struct {
		name    string
		pricing model.Pricing
		req     model.ParsedRequest
		total   float64
		endDate time.Time
	}{
		{"hourly rate", withHourly, model.ParsedRequest{StartDate: start, Hours: 5}, 62.5, start.AddDate(0, 0, 1)},
		{"daily fallback", dailyOnly, model.ParsedRequest{StartDate: start, Hours: 7}, 29.17, start.AddDate(0, 0, 1)},
		{"multi day hours", withHourly, model.ParsedRequest{StartDate: start, Hours: 49}, 612.5, start.AddDate(0, 0, 3)},
		{"end date", dailyOnly, model.ParsedRequest{StartDate: start, EndDate: &end}, 300, end},
		{"same day end", dailyOnly, model.ParsedRequest{StartDate: start, EndDate: &start}, 100, start},
		{"single day", withHourly, model.ParsedRequest{StartDate: start}, 240, start.AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(tt.pricing, tt.req)
			if q.Total != tt.total {
				t.Fatalf("total = %v, want %v", q.Total, tt.total)
			}
			if !q.EndDate.Equal(tt.endDate) {
				t.Fatalf("end = %v, want %v", q.EndDate, tt.endDate)
			}
		})
	}
}

func TestParseArrival(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"2 hours 30 minutes", 2*time.Hour + 30*time.Minute, true},
		{"1 hour", time.Hour, true},
		{"30 minutes", 30 * time.Minute, true},
		{"45", 45 * time.Minute, true},
		{"  90 min ", 90 * time.Minute, true},
		{"soon", DefaultArrival, false},
		{"", DefaultArrival, false},
		{"0", DefaultArrival, false},
		{"2 h 30 min", 2*time.Hour + 30*time.Minute, true},
		{"0.5 hour", DefaultArrival, false},
		{"1.5 hours", DefaultArrival, false},
		{"1,5 h", DefaultArrival, false},
	}
	for _, tt := range tests {
		got, ok := ParseArrival(tt.in, DefaultArrival)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseArrival(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
