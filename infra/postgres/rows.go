package postgres

import (
	"time"

	"github.com/kilianp07/rentmatch/core/model"
)

type bookingRow struct {
	ID              string     `db:"id"`
	EquipmentID     string     `db:"equipment_id"`
	RenterID        string     `db:"renter_id"`
	OwnerID         string     `db:"owner_id"`
	AcceptedOwnerID *string    `db:"accepted_owner_id"`
	Status          string     `db:"status"`
	Latitude        *float64   `db:"latitude"`
	Longitude       *float64   `db:"longitude"`
	Address         string     `db:"address"`
	StartDate       time.Time  `db:"start_date"`
	EndDate         *time.Time `db:"end_date"`
	Hours           int        `db:"hours"`
	TotalCost       float64    `db:"total_cost"`
	ArrivalEstimate string     `db:"arrival_estimate"`
	ArrivalAt       *time.Time `db:"arrival_at"`
	CreatedAt       time.Time  `db:"created_at"`
	ConfirmedAt     *time.Time `db:"confirmed_at"`
}

const bookingColumns = `id, equipment_id, renter_id, owner_id, accepted_owner_id, status,
	latitude, longitude, address, start_date, end_date, hours, total_cost,
	arrival_estimate, arrival_at, created_at, confirmed_at`

func (r bookingRow) model() model.Booking {
	b := model.Booking{
		ID:              r.ID,
		EquipmentID:     r.EquipmentID,
		RenterID:        r.RenterID,
		OwnerID:         r.OwnerID,
		Status:          model.BookingStatus(r.Status),
		Location:        point(r.Latitude, r.Longitude),
		Address:         r.Address,
		StartDate:       r.StartDate.UTC(),
		EndDate:         utc(r.EndDate),
		Hours:           r.Hours,
		TotalCost:       r.TotalCost,
		ArrivalEstimate: r.ArrivalEstimate,
		ArrivalAt:       utc(r.ArrivalAt),
		CreatedAt:       r.CreatedAt.UTC(),
		ConfirmedAt:     utc(r.ConfirmedAt),
	}
	if r.AcceptedOwnerID != nil {
		b.AcceptedOwnerID = *r.AcceptedOwnerID
	}
	return b
}

type candidateRow struct {
	ID          string     `db:"id"`
	BookingID   string     `db:"booking_id"`
	OwnerID     string     `db:"owner_id"`
	DistanceKm  float64    `db:"distance_km"`
	Status      string     `db:"status"`
	InvitedAt   time.Time  `db:"invited_at"`
	RespondedAt *time.Time `db:"responded_at"`
	AcceptedAt  *time.Time `db:"accepted_at"`
	ExpiredAt   *time.Time `db:"expired_at"`
}

const candidateColumns = `id, booking_id, owner_id, distance_km, status, invited_at,
	responded_at, accepted_at, expired_at`

func (r candidateRow) model() model.Candidate {
	return model.Candidate{
		ID:          r.ID,
		BookingID:   r.BookingID,
		OwnerID:     r.OwnerID,
		DistanceKm:  r.DistanceKm,
		Status:      model.CandidateStatus(r.Status),
		InvitedAt:   r.InvitedAt.UTC(),
		RespondedAt: utc(r.RespondedAt),
		AcceptedAt:  utc(r.AcceptedAt),
		ExpiredAt:   utc(r.ExpiredAt),
	}
}

type accountRow struct {
	ID           string   `db:"id"`
	Name         string   `db:"name"`
	Latitude     *float64 `db:"latitude"`
	Longitude    *float64 `db:"longitude"`
	Capabilities []string `db:"capabilities"`
}

func (r accountRow) model() model.Account {
	a := model.Account{ID: r.ID, Name: r.Name, Location: point(r.Latitude, r.Longitude)}
	for _, c := range r.Capabilities {
		a.Capabilities = append(a.Capabilities, model.Capability(c))
	}
	return a
}

type equipmentRow struct {
	ID          string   `db:"id"`
	OwnerID     string   `db:"owner_id"`
	Name        string   `db:"name"`
	DailyPrice  float64  `db:"daily_price"`
	HourlyPrice *float64 `db:"hourly_price"`
}

func (r equipmentRow) model() model.Equipment {
	return model.Equipment{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Name:    r.Name,
		Pricing: model.Pricing{DailyPrice: r.DailyPrice, HourlyPrice: r.HourlyPrice},
	}
}

func point(lat, lon *float64) *model.GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	return &model.GeoPoint{Latitude: *lat, Longitude: *lon}
}

func coords(p *model.GeoPoint) (lat, lon *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Latitude, &p.Longitude
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapRows[R interface{ model() M }, M any](rows []R) []M {
	out := make([]M, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out
}
