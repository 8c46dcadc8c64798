package models

import (
	"encoding/json"
	"testing"
)

func TestEncodePassengersRoundTrip(t *testing.T) {
	var list []Passenger
	raw := `[{"name":"A","age":30,"gender":"Male","mobile":"9876543210"},{"name":"B","age":5,"gender":"Female"}]`
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal passengers: %v", err)
	}

	got := EncodePassengers(list)
	if got != "A (30/Male), B (5/Female)" {
		t.Fatalf("unexpected encoding %q", got)
	}

	back := DecodePassengers(got)
	if len(back) != 2 {
		t.Fatalf("expected 2 passengers, got %d", len(back))
	}
	if back[0].Name != "A" || back[0].Age.String() != "30" || back[0].Gender != "Male" {
		t.Fatalf("first passenger decoded wrong: %+v", back[0])
	}
	if back[1].Name != "B" || back[1].Age.String() != "5" || back[1].Gender != "Female" {
		t.Fatalf("second passenger decoded wrong: %+v", back[1])
	}
}

func TestEncodePassengersOptionalParts(t *testing.T) {
	cases := []struct {
		in   Passenger
		want string
	}{
		{Passenger{Name: "Ravi"}, "Ravi"},
		{Passenger{Name: "Ravi", Age: "40"}, "Ravi (40)"},
		{Passenger{Name: "Ravi", Gender: "Male"}, "Ravi (/Male)"},
		{Passenger{Name: " Ravi,  Kumar (Jr) "}, "Ravi Kumar Jr"},
	}
	for _, tc := range cases {
		if got := EncodePassengers([]Passenger{tc.in}); got != tc.want {
			t.Fatalf("EncodePassengers(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if got := EncodePassengers([]Passenger{{Name: "  "}, {Name: "Meera", Age: "22", Gender: "Female"}}); got != "Meera (22/Female)" {
		t.Fatalf("blank passenger should be skipped, got %q", got)
	}
}

func TestDecodeGenderOnly(t *testing.T) {
	got := DecodePassengers("Ravi (/Male)")
	if len(got) != 1 || got[0].Age != "" || got[0].Gender != "Male" {
		t.Fatalf("gender-only entry decoded wrong: %+v", got)
	}
}

func TestPrimaryName(t *testing.T) {
	if got := PrimaryName("John Doe (25/Male), Jane Doe (30/Female)"); got != "John Doe" {
		t.Fatalf("PrimaryName = %q", got)
	}
	if got := PrimaryName("Solo"); got != "Solo" {
		t.Fatalf("PrimaryName without details = %q", got)
	}
	if NameKey(" John DOE ") != "john doe" {
		t.Fatalf("NameKey should trim and lower-case")
	}
	if PassengerCount("A (1/Male), B, C (/Female)") != 3 {
		t.Fatalf("PassengerCount mismatch")
	}
}

func TestBookedFromTicketMapsRouteFields(t *testing.T) {
	tk := Ticket{
		ID:          "TKT-1",
		FromStation: "CSTM",
		ToStation:   "KYN",
		Passengers:  "Asha (31/Female), Vik (8/Male)",
		Mobile:      "9999999999",
		CreatedBy:   "Najad",
		JourneyDate: "2026-11-02",
		Class:       "3A",
		TrainNumber: "12218",
		Remark:      "lower berth",
	}
	b := BookedFromTicket(tk, "BKT-1", "1234567890", tk.Created)
	if b.From != "CSTM" || b.To != "KYN" {
		t.Fatalf("route not mapped: %+v", b)
	}
	if b.Name != "Asha" || b.Staff != "Najad" || b.OriginalTicketID != "TKT-1" || b.Status != StatusBooked {
		t.Fatalf("fields not mapped: %+v", b)
	}
}

func TestTicketUpdateFieldsUnflagClearsDetails(t *testing.T) {
	off := false
	fields := TicketUpdate{DuplicateFlag: &off}.Fields()
	if v, ok := fields["duplicate_flag"].(bool); !ok || v {
		t.Fatalf("duplicate_flag not set to false: %v", fields)
	}
	if d, ok := fields["duplicate_details"].(map[string]any); !ok || len(d) != 0 {
		t.Fatalf("duplicate_details should be emptied: %v", fields)
	}
	if len(TicketUpdate{}.Fields()) != 0 {
		t.Fatalf("empty update should produce no fields")
	}
}

func TestPrimaryPassengerSkipsBlankRows(t *testing.T) {
	p, ok := PrimaryPassenger([]Passenger{{Name: " , "}, {Name: "Meena", Mobile: "9876543210"}})
	if !ok || p.Name != "Meena" || p.Mobile != "9876543210" {
		t.Fatalf("PrimaryPassenger = %+v, %v", p, ok)
	}
	if _, ok := PrimaryPassenger([]Passenger{{Name: "()"}}); ok {
		t.Fatalf("expected no primary passenger")
	}
}
