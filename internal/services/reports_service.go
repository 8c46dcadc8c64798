package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/repositories"
	"github.com/ZiyadBin/rain-system/internal/store"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

const (
	topRouteCount      = 5
	recentActivitySize = 10
)

// ReportsService aggregates over both collections: a pending ticket counts as an open
// request and a booked record as a completed one.
type ReportsService struct {
	Store store.Store
	Now   func() time.Time
}

type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalTickets   int          `json:"totalTickets"`
	BookedTickets  int          `json:"bookedTickets"`
	PendingTickets int          `json:"pendingTickets"`
	TodayTickets   int          `json:"todayTickets"`
	CompletionRate float64      `json:"completionRate"`
	TopRoutes      []RouteCount `json:"topRoutes"`
}

type Summary struct {
	Total          int     `json:"total"`
	Booked         int     `json:"booked"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completionRate"`
}

type StaffPerformance struct {
	Staff   string `json:"staff"`
	Total   int    `json:"total"`
	Booked  int    `json:"booked"`
	Pending int    `json:"pending"`
}

type RouteAnalysis struct {
	Route  string `json:"route"`
	Count  int    `json:"count"`
	Booked int    `json:"booked"`
}

type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

type Analytics struct {
	Summary           Summary            `json:"summary"`
	UserPerformance   []StaffPerformance `json:"userPerformance"`
	RouteAnalysis     []RouteAnalysis    `json:"routeAnalysis"`
	ClassDistribution []ClassCount       `json:"classDistribution"`
	RecentActivity    []models.Ticket    `json:"recentActivity"`
}

func (s ReportsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s ReportsService) load(ctx context.Context) ([]models.Ticket, []models.BookedTicket, error) {
	pending, err := repositories.TicketRepository{Store: s.Store}.List(ctx)
	if err != nil {
		return nil, nil, domain.InternalError{Msg: "load tickets", Err: err}
	}
	booked, err := repositories.BookedRepository{Store: s.Store}.List(ctx)
	if err != nil {
		return nil, nil, domain.InternalError{Msg: "load booked tickets", Err: err}
	}
	return pending, booked, nil
}

func (s ReportsService) Stats(ctx context.Context) (Stats, error) {
	pending, booked, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()

	today := 0
	routes := linkedhashmap.New()
	for _, t := range pending {
		if utils.SameDay(t.Created, now) {
			today++
		}
		bump(routes, routeLabel(t.FromStation, t.ToStation))
	}
	for _, b := range booked {
		if utils.SameDay(b.BookedDate, now) {
			today++
		}
		bump(routes, routeLabel(b.From, b.To))
	}

	top := make([]RouteCount, 0, routes.Size())
	it := routes.Iterator()
	for it.Next() {
		top = append(top, RouteCount{Route: it.Key().(string), Count: it.Value().(int)})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topRouteCount {
		top = top[:topRouteCount]
	}

	total := len(pending) + len(booked)
	return Stats{
		TotalTickets:   total,
		BookedTickets:  len(booked),
		PendingTickets: len(pending),
		TodayTickets:   today,
		CompletionRate: completionRate(len(booked), total),
		TopRoutes:      top,
	}, nil
}

func (s ReportsService) Analytics(ctx context.Context) (Analytics, error) {
	pending, booked, err := s.load(ctx)
	if err != nil {
		return Analytics{}, err
	}

	staff := linkedhashmap.New()
	routes := linkedhashmap.New()
	classes := linkedhashmap.New()

	staffEntry := func(name string) *StaffPerformance {
		if v, ok := staff.Get(name); ok {
			return v.(*StaffPerformance)
		}
		p := &StaffPerformance{Staff: name}
		staff.Put(name, p)
		return p
	}
	routeEntry := func(label string) *RouteAnalysis {
		if v, ok := routes.Get(label); ok {
			return v.(*RouteAnalysis)
		}
		r := &RouteAnalysis{Route: label}
		routes.Put(label, r)
		return r
	}

	for _, t := range pending {
		p := staffEntry(t.CreatedBy)
		p.Total++
		p.Pending++
		routeEntry(routeLabel(t.FromStation, t.ToStation)).Count++
		bump(classes, t.Class)
	}
	for _, b := range booked {
		p := staffEntry(b.Staff)
		p.Total++
		p.Booked++
		r := routeEntry(routeLabel(b.From, b.To))
		r.Count++
		r.Booked++
		bump(classes, b.Class)
	}

	out := Analytics{
		Summary: Summary{
			Total:          len(pending) + len(booked),
			Booked:         len(booked),
			Pending:        len(pending),
			CompletionRate: completionRate(len(booked), len(pending)+len(booked)),
		},
		UserPerformance:   make([]StaffPerformance, 0, staff.Size()),
		RouteAnalysis:     make([]RouteAnalysis, 0, routes.Size()),
		ClassDistribution: make([]ClassCount, 0, classes.Size()),
	}
	for it := staff.Iterator(); it.Next(); {
		out.UserPerformance = append(out.UserPerformance, *it.Value().(*StaffPerformance))
	}
	for it := routes.Iterator(); it.Next(); {
		out.RouteAnalysis = append(out.RouteAnalysis, *it.Value().(*RouteAnalysis))
	}
	for it := classes.Iterator(); it.Next(); {
		out.ClassDistribution = append(out.ClassDistribution, ClassCount{Class: it.Key().(string), Count: it.Value().(int)})
	}

	recent := append([]models.Ticket(nil), pending...)
	newestFirst(recent)
	if len(recent) > recentActivitySize {
		recent = recent[:recentActivitySize]
	}
	out.RecentActivity = recent
	return out, nil
}

func bump(m *linkedhashmap.Map, key string) {
	n := 0
	if v, ok := m.Get(key); ok {
		n = v.(int)
	}
	m.Put(key, n+1)
}

func routeLabel(from, to string) string {
	return from + " → " + to
}

// completionRate is booked/total as a percentage with one decimal.
func completionRate(booked, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(booked)/float64(total)*1000) / 10
}
