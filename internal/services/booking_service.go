package services

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/repositories"
	"github.com/ZiyadBin/rain-system/internal/store"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

const pnrLength = 10

// BookingService moves tickets into the booked history and serves that history.
type BookingService struct {
	Store store.Store
	Now   func() time.Time
	NewID func() string
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return "BKT-" + uuid.NewString()
}

func (s BookingService) tickets() repositories.TicketRepository {
	return repositories.TicketRepository{Store: s.Store}
}

func (s BookingService) booked() repositories.BookedRepository {
	return repositories.BookedRepository{Store: s.Store}
}

// Promote books a pending ticket under pnr: the booked record is inserted first and the
// pending ticket deleted second. On a transactional store both writes commit together.
// Otherwise a failed delete leaves the ticket in both collections and returns
// ErrPromoteIncomplete.
func (s BookingService) Promote(ctx context.Context, in models.PromoteInput) (models.BookedTicket, error) {
	ticketID := strings.TrimSpace(in.TicketID)
	if ticketID == "" {
		return models.BookedTicket{}, domain.ValidationError{Field: "ticketId", Msg: "is required"}
	}
	pnr, err := validatePNR(in.PNR)
	if err != nil {
		return models.BookedTicket{}, err
	}

	if txStore, ok := s.Store.(store.Transactional); ok {
		var out models.BookedTicket
		err := txStore.WithinTx(ctx, func(tx store.Store) error {
			var err error
			out, err = s.promoteOn(ctx, tx, ticketID, pnr, true)
			return err
		})
		return out, err
	}
	return s.promoteOn(ctx, s.Store, ticketID, pnr, false)
}

func (s BookingService) promoteOn(ctx context.Context, st store.Store, ticketID, pnr string, inTx bool) (models.BookedTicket, error) {
	tickets := s.tickets().WithStore(st)
	booked := s.booked().WithStore(st)

	t, ok, err := tickets.Get(ctx, ticketID)
	if err != nil {
		return models.BookedTicket{}, domain.InternalError{Msg: "load tickets", Err: err}
	}
	if !ok {
		return models.BookedTicket{}, domain.NotFoundError{Resource: "ticket", ID: ticketID, Msg: "Original ticket not found"}
	}

	b := models.BookedFromTicket(t, s.newID(), pnr, s.now())
	if err := booked.Insert(ctx, b); err != nil {
		return models.BookedTicket{}, domain.InternalError{Msg: "Failed to save booked ticket", Err: err}
	}

	removed, err := tickets.Delete(ctx, t.ID)
	switch {
	case err != nil && inTx:
		return models.BookedTicket{}, domain.InternalError{Msg: "remove booked ticket from queue", Err: err}
	case err != nil:
		incomplete := errors.Join(domain.ErrPromoteIncomplete, err)
		utils.LogFailure(utils.RequestIDFromContext(ctx), "booked", "promote", incomplete,
			zap.String("ticket_id", t.ID), zap.String("booked_id", b.ID))
		return models.BookedTicket{}, domain.InternalError{Msg: "ticket booked but still queued", Err: incomplete}
	case !removed && inTx:
		// Another promote or delete took the ticket first; the rollback drops our insert.
		return models.BookedTicket{}, domain.NotFoundError{Resource: "ticket", ID: ticketID, Msg: "Original ticket not found"}
	case !removed:
		incomplete := errors.Join(domain.ErrPromoteIncomplete, errTicketVanished)
		utils.LogFailure(utils.RequestIDFromContext(ctx), "booked", "promote", incomplete,
			zap.String("ticket_id", t.ID), zap.String("booked_id", b.ID))
		return models.BookedTicket{}, domain.InternalError{Msg: "ticket left the queue during booking", Err: incomplete}
	}
	return b, nil
}

var errTicketVanished = errors.New("ticket removed by a concurrent request")

func validatePNR(raw string) (string, error) {
	pnr := strings.TrimSpace(raw)
	if pnr == "" {
		return "", domain.ValidationError{Field: "pnr", Msg: "PNR is required"}
	}
	if len([]rune(pnr)) != pnrLength {
		return "", domain.ValidationError{Field: "pnr", Msg: "PNR must be exactly 10 characters"}
	}
	return pnr, nil
}

// BulkBook accepts exactly one id, since a PNR belongs to a single booking.
func (s BookingService) BulkBook(ctx context.Context, ids []string, pnr string) (BulkResult, error) {
	clean, err := cleanIDs(ids)
	if err != nil {
		return BulkResult{}, err
	}
	if len(clean) != 1 {
		return BulkResult{}, domain.ValidationError{Field: "ids", Msg: "exactly one ticket can be booked per PNR"}
	}
	if _, err := validatePNR(pnr); err != nil {
		return BulkResult{}, err
	}
	return runBulk(clean, func(id string) error {
		_, err := s.Promote(ctx, models.PromoteInput{TicketID: id, PNR: pnr})
		return err
	}), nil
}

// BookedQuery filters the booked history. Empty Period and Staff mean ALL.
type BookedQuery struct {
	Period domain.Period
	Staff  string
}

func (s BookingService) ListBooked(ctx context.Context, q BookedQuery) ([]models.BookedTicket, error) {
	since, err := periodStart(q.Period, s.now())
	if err != nil {
		return nil, err
	}
	all, err := s.booked().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "load booked tickets", Err: err}
	}

	staff := strings.TrimSpace(q.Staff)
	if strings.EqualFold(staff, "ALL") {
		staff = ""
	}
	out := make([]models.BookedTicket, 0, len(all))
	for _, b := range all {
		if !since.IsZero() && b.BookedDate.Before(since) {
			continue
		}
		if staff != "" && !utils.EqualFoldTrim(b.Staff, staff) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookedDate.After(out[j].BookedDate) })
	return out, nil
}

// periodStart returns the lower bound for p: local midnight for TODAY, seven days back
// for WEEK, one calendar month back for MONTH, and zero for ALL.
func periodStart(p domain.Period, now time.Time) (time.Time, error) {
	switch domain.Period(strings.ToUpper(strings.TrimSpace(string(p)))) {
	case "", domain.PeriodAll:
		return time.Time{}, nil
	case domain.PeriodToday:
		return utils.StartOfDay(now), nil
	case domain.PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case domain.PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, domain.ValidationError{Field: "period", Msg: "must be TODAY, WEEK, MONTH or ALL"}
	}
}

func (s BookingService) GetBooked(ctx context.Context, id string) (models.BookedTicket, error) {
	b, ok, err := s.booked().Get(ctx, id)
	if err != nil {
		return models.BookedTicket{}, domain.InternalError{Msg: "load booked tickets", Err: err}
	}
	if !ok {
		return models.BookedTicket{}, domain.NotFoundError{Resource: "booked ticket", ID: id, Msg: "Booked ticket not found"}
	}
	return b, nil
}

func (s BookingService) UpdateBooked(ctx context.Context, id string, upd models.BookedUpdate) error {
	if upd.From != nil {
		*upd.From = utils.StationCode(*upd.From)
	}
	if upd.To != nil {
		*upd.To = utils.StationCode(*upd.To)
	}
	if upd.Class != nil {
		*upd.Class = strings.ToUpper(strings.TrimSpace(*upd.Class))
		if !domain.IsValidClass(*upd.Class) {
			return domain.ValidationError{Field: "class", Msg: "unknown travel class"}
		}
	}
	if upd.JourneyDate != nil && !utils.IsISODate(*upd.JourneyDate) {
		return domain.ValidationError{Field: "journey_date", Msg: "must be YYYY-MM-DD"}
	}
	if upd.Mobile != nil {
		m := strings.TrimSpace(*upd.Mobile)
		if m != domain.MissingMobile && !mobilePattern.MatchString(m) {
			return domain.ValidationError{Field: "mobile", Msg: "must be 10 digits"}
		}
		*upd.Mobile = m
	}

	ok, err := s.booked().Update(ctx, id, upd.Fields())
	if err != nil {
		return domain.InternalError{Msg: "update booked ticket", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "booked ticket", ID: id, Msg: "Booked ticket not found"}
	}
	return nil
}

// ExportQuery bounds the CSV export by booked date (inclusive days) and staff.
type ExportQuery struct {
	StartDate string
	EndDate   string
	Staff     string
}

var exportHeader = []string{"PNR", "From", "To", "Passenger Name", "Mobile", "Staff", "Journey Date", "Booked Date", "Class", "Train Number", "Remark"}

// ExportCSV renders the filtered history in stored order with every field quoted.
func (s BookingService) ExportCSV(ctx context.Context, q ExportQuery) ([]byte, string, error) {
	var from, until time.Time
	if v := strings.TrimSpace(q.StartDate); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return nil, "", domain.ValidationError{Field: "startDate", Msg: "must be YYYY-MM-DD"}
		}
		from = d
	}
	if v := strings.TrimSpace(q.EndDate); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return nil, "", domain.ValidationError{Field: "endDate", Msg: "must be YYYY-MM-DD"}
		}
		until = d.AddDate(0, 0, 1)
	}

	all, err := s.booked().List(ctx)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "load booked tickets", Err: err}
	}
	staff := strings.TrimSpace(q.Staff)
	if strings.EqualFold(staff, "ALL") {
		staff = ""
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(exportHeader, ","))
	for _, b := range all {
		if !from.IsZero() && b.BookedDate.Before(from) {
			continue
		}
		if !until.IsZero() && !b.BookedDate.Before(until) {
			continue
		}
		if staff != "" && !utils.EqualFoldTrim(b.Staff, staff) {
			continue
		}
		buf.WriteByte('\n')
		writeQuotedRow(&buf, []string{
			b.PNR, b.From, b.To, b.Name, b.Mobile, b.Staff, b.JourneyDate,
			utils.FormatDate(b.BookedDate), b.Class, b.TrainNumber, b.Remark,
		})
	}
	return buf.Bytes(), "booked_tickets_" + utils.FormatDate(s.now()) + ".csv", nil
}

func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}
