package models

import "time"

// BookedTicket is a finalized booking in the booked_tickets collection.
// Its route fields are named from/to, unlike Ticket's from_station/to_station.
type BookedTicket struct {
	ID               string    `json:"id"`
	OriginalTicketID string    `json:"original_ticket_id"`
	PNR              string    `json:"pnr"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Name             string    `json:"name"`
	Mobile           string    `json:"mobile"`
	Staff            string    `json:"staff"`
	JourneyDate      string    `json:"journey_date"`
	BookedDate       time.Time `json:"booked_date"`
	Class            string    `json:"class"`
	TrainNumber      string    `json:"train_number"`
	Remark           string    `json:"remark"`
	Status           string    `json:"status"`
}

const StatusBooked = "booked"

// BookedFromTicket maps a pending ticket onto its booked record.
func BookedFromTicket(t Ticket, id, pnr string, bookedAt time.Time) BookedTicket {
	return BookedTicket{
		ID:               id,
		OriginalTicketID: t.ID,
		PNR:              pnr,
		From:             t.FromStation,
		To:               t.ToStation,
		Name:             t.PrimaryName(),
		Mobile:           t.Mobile,
		Staff:            t.CreatedBy,
		JourneyDate:      t.JourneyDate,
		BookedDate:       bookedAt,
		Class:            t.Class,
		TrainNumber:      t.TrainNumber,
		Remark:           t.Remark,
		Status:           StatusBooked,
	}
}

// PromoteInput is the mark-as-booked payload.
type PromoteInput struct {
	TicketID string `json:"ticketId" binding:"required"`
	PNR      string `json:"pnr" binding:"required"`
}

// BookedUpdate is a partial edit of a booked record.
type BookedUpdate struct {
	From        *string `json:"from"`
	To          *string `json:"to"`
	Name        *string `json:"name"`
	Mobile      *string `json:"mobile"`
	Class       *string `json:"class"`
	TrainNumber *string `json:"train_number"`
	JourneyDate *string `json:"journey_date"`
	Remark      *string `json:"remark"`
}

func (u BookedUpdate) Fields() map[string]any {
	out := map[string]any{}
	putString(out, "from", u.From)
	putString(out, "to", u.To)
	putString(out, "name", u.Name)
	putString(out, "mobile", u.Mobile)
	putString(out, "class", u.Class)
	putString(out, "train_number", u.TrainNumber)
	putString(out, "journey_date", u.JourneyDate)
	putString(out, "remark", u.Remark)
	return out
}
