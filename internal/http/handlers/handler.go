package handlers

import (
	"github.com/ZiyadBin/rain-system/internal/jobs"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/store"
)

// Handler groups the services behind the HTTP routes.
type Handler struct {
	Store    store.Store
	Tickets  services.TicketService
	Booking  services.BookingService
	Reports  services.ReportsService
	Auth     *services.AuthService
	Snapshot jobs.Snapshotter
}

// New wires every service over one store.
func New(st store.Store, matcher services.Matcher, auth *services.AuthService, snapshotDir string) *Handler {
	return &Handler{
		Store:    st,
		Tickets:  services.TicketService{Store: st, Matcher: matcher},
		Booking:  services.BookingService{Store: st},
		Reports:  services.ReportsService{Store: st},
		Auth:     auth,
		Snapshot: jobs.Snapshotter{Store: st, Dir: snapshotDir},
	}
}
