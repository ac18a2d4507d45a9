package model

import (
	"strings"
	"time"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// BookingRequest is the inbound shape of a rental request.
type BookingRequest struct {
	EquipmentID string   `json:"equipment_id"`
	RenterID    string   `json:"renter_id"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date,omitempty"`
	Hours       *int     `json:"hours,omitempty"`
	Address     string   `json:"location,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// ParsedRequest is a validated BookingRequest.
type ParsedRequest struct {
	EquipmentID string
	RenterID    string
	StartDate   time.Time
	EndDate     *time.Time
	Hours       int
	Address     string
	Location    *GeoPoint
}

// Parse validates the request and returns its typed form. It never touches storage.
func (r BookingRequest) Parse() (ParsedRequest, error) {
	var p ParsedRequest
	p.EquipmentID = strings.TrimSpace(r.EquipmentID)
	if p.EquipmentID == "" {
		return p, invalid("equipment_id", "is required")
	}
	p.RenterID = strings.TrimSpace(r.RenterID)
	if p.RenterID == "" {
		return p, invalid("renter_id", "is required")
	}
	if strings.TrimSpace(r.StartDate) == "" {
		return p, invalid("start_date", "is required")
	}
	start, err := time.Parse(DateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return p, invalid("start_date", "must be YYYY-MM-DD")
	}
	p.StartDate = start

	if r.Hours != nil && r.EndDate != "" {
		return p, invalid("hours", "cannot be combined with end_date")
	}
	if r.Hours != nil {
		if *r.Hours <= 0 {
			return p, invalid("hours", "must be positive")
		}
		p.Hours = *r.Hours
	}
	if r.EndDate != "" {
		end, err := time.Parse(DateLayout, strings.TrimSpace(r.EndDate))
		if err != nil {
			return p, invalid("end_date", "must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return p, invalid("end_date", "is before start_date")
		}
		p.EndDate = &end
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		return p, invalid("location", "latitude and longitude must be given together")
	}
	if r.Latitude != nil {
		pt := GeoPoint{Latitude: *r.Latitude, Longitude: *r.Longitude}
		if err := pt.Validate(); err != nil {
			return p, err
		}
		p.Location = &pt
	}
	p.Address = strings.TrimSpace(r.Address)
	return p, nil
}
