package dispatch

import (
	"math"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
)

// Quote is the priced rental window of a request.
type Quote struct {
	Total   float64
	EndDate time.Time
}

// Price computes the total cost and end date of req for equipment priced p.
//
// With hours, the hourly price applies (daily price / 24 when no hourly price
// is set) and the end date is start + ceil(hours/24) days, at least one.
// With an end date, every started day is charged at the daily price, at least
// one. With neither, the request covers a single day.
func Price(p model.Pricing, req model.ParsedRequest) Quote {
	start := req.StartDate
	switch {
	case req.Hours > 0:
		rate := p.DailyPrice / 24
		if p.HourlyPrice != nil {
			rate = *p.HourlyPrice
		}
		days := int(math.Ceil(float64(req.Hours) / 24))
		if days < 1 {
			days = 1
		}
		return Quote{Total: round2(rate * float64(req.Hours)), EndDate: start.AddDate(0, 0, days)}
	case req.EndDate != nil:
		days := int(req.EndDate.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		return Quote{Total: round2(p.DailyPrice * float64(days)), EndDate: *req.EndDate}
	default:
		return Quote{Total: round2(p.DailyPrice), EndDate: start.AddDate(0, 0, 1)}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
