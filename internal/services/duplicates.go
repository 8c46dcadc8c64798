package services

import (
	"strings"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
)

// Match type labels written into duplicate_details.matchType.
const (
	MatchMobileRoutePending = "Mobile + Route (Pending)"
	MatchMobileRouteBooked  = "Mobile + Route (Booked)"
	MatchDetailsPending     = "Details (Pending)"
	MatchDetailsBooked      = "Details (Booked)"
)

// MatchResult is the verdict for one candidate. MatchID is the id of the record it
// collided with: a Ticket id for pending matches, a BookedTicket id for booked ones.
type MatchResult struct {
	IsDuplicate bool
	MatchType   string
	MatchID     string
}

// Details converts a positive verdict into the stored duplicate_details.
func (m MatchResult) Details() models.DuplicateDetails {
	if !m.IsDuplicate {
		return models.DuplicateDetails{}
	}
	return models.DuplicateDetails{MatchType: m.MatchType, MatchID: m.MatchID}
}

// Label is the match type, or "none" for a clean ticket. Used as a log field and metric label.
func (m MatchResult) Label() string {
	if !m.IsDuplicate {
		return "none"
	}
	return m.MatchType
}

// Matcher holds the duplicate policy. The zero value compares "N/A" mobiles literally,
// so two requests without a phone on the same route are flagged.
type Matcher struct {
	ExemptMissingMobile bool
}

// FindDuplicates runs the default policy.
func FindDuplicates(candidate models.Ticket, pending []models.Ticket, booked []models.BookedTicket) MatchResult {
	return Matcher{}.Find(candidate, pending, booked)
}

// Find checks mobile+route across pending then booked, then name+route+date across
// pending then booked. The first hit wins; collections are scanned in stored order.
func (m Matcher) Find(candidate models.Ticket, pending []models.Ticket, booked []models.BookedTicket) MatchResult {
	if m.mobileComparable(candidate.Mobile) {
		for _, t := range pending {
			if t.ID == candidate.ID {
				continue
			}
			if t.Mobile == candidate.Mobile && t.FromStation == candidate.FromStation && t.ToStation == candidate.ToStation {
				return MatchResult{IsDuplicate: true, MatchType: MatchMobileRoutePending, MatchID: t.ID}
			}
		}
		for _, b := range booked {
			if b.Mobile == candidate.Mobile && b.From == candidate.FromStation && b.To == candidate.ToStation {
				return MatchResult{IsDuplicate: true, MatchType: MatchMobileRouteBooked, MatchID: b.ID}
			}
		}
	}

	name := models.NameKey(candidate.PrimaryName())
	for _, t := range pending {
		if t.ID == candidate.ID {
			continue
		}
		if t.FromStation == candidate.FromStation && t.ToStation == candidate.ToStation &&
			t.JourneyDate == candidate.JourneyDate && models.NameKey(t.PrimaryName()) == name {
			return MatchResult{IsDuplicate: true, MatchType: MatchDetailsPending, MatchID: t.ID}
		}
	}
	for _, b := range booked {
		if b.From == candidate.FromStation && b.To == candidate.ToStation &&
			b.JourneyDate == candidate.JourneyDate && models.NameKey(models.PrimaryName(b.Name)) == name {
			return MatchResult{IsDuplicate: true, MatchType: MatchDetailsBooked, MatchID: b.ID}
		}
	}
	return MatchResult{}
}

func (m Matcher) mobileComparable(mobile string) bool {
	if !m.ExemptMissingMobile {
		return true
	}
	mobile = strings.TrimSpace(mobile)
	return mobile != "" && mobile != domain.MissingMobile
}
