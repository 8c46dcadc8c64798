package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Stringish accepts a JSON string, number or bool and keeps it as text.
// Quick-entry forms send ages as "" or "30" while API clients send 30.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
		return nil
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(string(b))
		return nil
	}
}

func (s Stringish) String() string { return strings.TrimSpace(string(s)) }

// Passenger is one traveller of a request. Only the first passenger carries a mobile.
type Passenger struct {
	Name   string    `json:"name"`
	Age    Stringish `json:"age,omitempty"`
	Gender string    `json:"gender,omitempty"`
	Mobile string    `json:"mobile,omitempty"`
}

var nameCleaner = strings.NewReplacer(",", " ", "(", " ", ")", " ", "/", " ")

// CleanName is the name as encoded: separators removed, spaces collapsed.
// Passengers with an empty CleanName are not stored.
func (p Passenger) CleanName() string {
	return strings.Join(strings.Fields(nameCleaner.Replace(p.Name)), " ")
}

// PrimaryPassenger returns the first passenger that survives encoding.
func PrimaryPassenger(list []Passenger) (Passenger, bool) {
	for _, p := range list {
		if p.CleanName() != "" {
			return p, true
		}
	}
	return Passenger{}, false
}

// EncodePassengers renders the stored form "Name (Age/Gender), Name2 (Age2/Gender2)".
// Age and gender are individually optional; gender without age renders as "Name (/Gender)".
func EncodePassengers(list []Passenger) string {
	parts := make([]string, 0, len(list))
	for _, p := range list {
		name := p.CleanName()
		if name == "" {
			continue
		}
		age := p.Age.String()
		gender := strings.TrimSpace(p.Gender)
		switch {
		case age != "" && gender != "":
			parts = append(parts, name+" ("+age+"/"+gender+")")
		case age != "":
			parts = append(parts, name+" ("+age+")")
		case gender != "":
			parts = append(parts, name+" (/"+gender+")")
		default:
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

// DecodePassengers parses the stored passenger string back into passengers.
// Mobile is not part of the encoded form and is left empty.
func DecodePassengers(s string) []Passenger {
	out := []Passenger{}
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		p := Passenger{Name: nameOf(seg)}
		if open := strings.Index(seg, "("); open >= 0 {
			details := seg[open+1:]
			if end := strings.Index(details, ")"); end >= 0 {
				details = details[:end]
			}
			age, gender, _ := strings.Cut(details, "/")
			p.Age = Stringish(strings.TrimSpace(age))
			p.Gender = strings.TrimSpace(gender)
		}
		out = append(out, p)
	}
	return out
}

// PrimaryName returns the first passenger's name as stored (case preserved).
func PrimaryName(passengers string) string {
	first, _, _ := strings.Cut(passengers, ",")
	return nameOf(first)
}

// NameKey is the case-insensitive comparison form of the primary name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PassengerCount counts the comma separated entries of an encoded list.
func PassengerCount(passengers string) int {
	return len(DecodePassengers(passengers))
}

func nameOf(seg string) string {
	if i := strings.Index(seg, "("); i >= 0 {
		seg = seg[:i]
	}
	return strings.TrimSpace(seg)
}
