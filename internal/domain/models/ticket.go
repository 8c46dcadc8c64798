package models

import "time"

// DuplicateDetails records which existing record a flagged ticket collided with.
type DuplicateDetails struct {
	MatchType string `json:"matchType,omitempty"`
	MatchID   string `json:"matchId,omitempty"`
}

// Ticket is a pending request in the tickets collection.
type Ticket struct {
	ID               string           `json:"id"`
	FromStation      string           `json:"from_station"`
	ToStation        string           `json:"to_station"`
	BoardingStation  string           `json:"boarding_station"`
	TrainNumber      string           `json:"train_number"`
	Class            string           `json:"class"`
	JourneyDate      string           `json:"journey_date"`
	Passengers       string           `json:"passengers"`
	Mobile           string           `json:"mobile"`
	Created          time.Time        `json:"created"`
	CreatedBy        string           `json:"created_by"`
	AssignedTo       string           `json:"assigned_to,omitempty"`
	Status           string           `json:"status"`
	Remark           string           `json:"remark"`
	DuplicateFlag    bool             `json:"duplicate_flag"`
	DuplicateDetails DuplicateDetails `json:"duplicate_details"`
}

// PrimaryName is the first passenger's name.
func (t Ticket) PrimaryName() string { return PrimaryName(t.Passengers) }

// CreateTicketInput is the quick-entry payload.
type CreateTicketInput struct {
	Username        string      `json:"username"`
	FromStation     string      `json:"from_station" binding:"required"`
	ToStation       string      `json:"to_station" binding:"required"`
	BoardingStation string      `json:"boarding_station"`
	TrainNumber     string      `json:"train_number"`
	Class           string      `json:"class" binding:"required,railclass"`
	JourneyDate     string      `json:"journey_date" binding:"required,isodate"`
	Remark          string      `json:"remark"`
	Passengers      []Passenger `json:"passengers" binding:"required,min=1"`
}

// TicketUpdate is a partial edit. Nil fields are left untouched.
type TicketUpdate struct {
	FromStation     *string `json:"from_station"`
	ToStation       *string `json:"to_station"`
	BoardingStation *string `json:"boarding_station"`
	TrainNumber     *string `json:"train_number"`
	Class           *string `json:"class"`
	JourneyDate     *string `json:"journey_date"`
	Remark          *string `json:"remark"`
	Status          *string `json:"status"`
	CreatedBy       *string `json:"created_by"`
	AssignedTo      *string `json:"assigned_to"`
	DuplicateFlag   *bool   `json:"duplicate_flag"`
}

// Fields returns the storage field map for the set values.
func (u TicketUpdate) Fields() map[string]any {
	out := map[string]any{}
	putString(out, "from_station", u.FromStation)
	putString(out, "to_station", u.ToStation)
	putString(out, "boarding_station", u.BoardingStation)
	putString(out, "train_number", u.TrainNumber)
	putString(out, "class", u.Class)
	putString(out, "journey_date", u.JourneyDate)
	putString(out, "remark", u.Remark)
	putString(out, "status", u.Status)
	putString(out, "created_by", u.CreatedBy)
	putString(out, "assigned_to", u.AssignedTo)
	if u.DuplicateFlag != nil {
		out["duplicate_flag"] = *u.DuplicateFlag
		if !*u.DuplicateFlag {
			out["duplicate_details"] = map[string]any{}
		}
	}
	return out
}

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}
