package services

import (
	"context"
	"regexp"
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

const (
	StatusReceived = "received"
	unknownStaff   = "Unknown"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// TicketService owns the pending queue: creation with duplicate detection, edits,
// deletion and bulk actions.
type TicketService struct {
	Store   store.Store
	Matcher Matcher
	Now     func() time.Time
	NewID   func() string
}

func (s TicketService) tickets() repositories.TicketRepository {
	return repositories.TicketRepository{Store: s.Store}
}

func (s TicketService) booked() repositories.BookedRepository {
	return repositories.BookedRepository{Store: s.Store}
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s TicketService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return "TKT-" + uuid.NewString()
}

// CreateResult is what the quick-entry form needs back.
type CreateResult struct {
	Ticket    models.Ticket
	Duplicate MatchResult
}

// Create validates the request, runs duplicate detection against both collections and
// stores the ticket with the verdict. The verdict is never recomputed afterwards.
func (s TicketService) Create(ctx context.Context, in models.CreateTicketInput, who domain.Identity) (CreateResult, error) {
	t, err := s.buildTicket(in, who)
	if err != nil {
		return CreateResult{}, err
	}

	pending, err := s.tickets().List(ctx)
	if err != nil {
		return CreateResult{}, domain.InternalError{Msg: "load tickets", Err: err}
	}
	booked, err := s.booked().List(ctx)
	if err != nil {
		return CreateResult{}, domain.InternalError{Msg: "load booked tickets", Err: err}
	}

	verdict := s.Matcher.Find(t, pending, booked)
	t.DuplicateFlag = verdict.IsDuplicate
	t.DuplicateDetails = verdict.Details()

	if err := s.tickets().Insert(ctx, t); err != nil {
		return CreateResult{}, domain.InternalError{Msg: "save ticket", Err: err}
	}
	fields := []zap.Field{zap.String("ticket_id", t.ID), zap.String("match_type", verdict.Label())}
	if verdict.IsDuplicate {
		fields = append(fields, zap.String("match_id", verdict.MatchID))
	}
	utils.LogEvent(utils.RequestIDFromContext(ctx), "tickets", "create", "ticket created", fields...)
	return CreateResult{Ticket: t, Duplicate: verdict}, nil
}

func (s TicketService) buildTicket(in models.CreateTicketInput, who domain.Identity) (models.Ticket, error) {
	from := utils.StationCode(in.FromStation)
	to := utils.StationCode(in.ToStation)
	if from == "" {
		return models.Ticket{}, domain.ValidationError{Field: "from_station", Msg: "is required"}
	}
	if to == "" {
		return models.Ticket{}, domain.ValidationError{Field: "to_station", Msg: "is required"}
	}
	class := strings.ToUpper(strings.TrimSpace(in.Class))
	if !domain.IsValidClass(class) {
		return models.Ticket{}, domain.ValidationError{Field: "class", Msg: "unknown travel class"}
	}
	if !utils.IsISODate(in.JourneyDate) {
		return models.Ticket{}, domain.ValidationError{Field: "journey_date", Msg: "must be YYYY-MM-DD"}
	}
	passengers := models.EncodePassengers(in.Passengers)
	if passengers == "" {
		return models.Ticket{}, domain.ValidationError{Field: "passengers", Msg: "at least one named passenger is required"}
	}
	for _, p := range in.Passengers {
		if p.CleanName() == "" && strings.TrimSpace(p.Mobile) != "" {
			return models.Ticket{}, domain.ValidationError{Field: "passengers", Msg: "a passenger with a mobile needs a name"}
		}
	}
	mobile := domain.MissingMobile
	primary, _ := models.PrimaryPassenger(in.Passengers)
	if m := strings.Join(strings.Fields(primary.Mobile), ""); m != "" {
		if !mobilePattern.MatchString(m) {
			return models.Ticket{}, domain.ValidationError{Field: "mobile", Msg: "must be 10 digits"}
		}
		mobile = m
	}

	return models.Ticket{
		ID:              s.newID(),
		FromStation:     from,
		ToStation:       to,
		BoardingStation: utils.StationCode(in.BoardingStation),
		TrainNumber:     strings.TrimSpace(in.TrainNumber),
		Class:           class,
		JourneyDate:     strings.TrimSpace(in.JourneyDate),
		Passengers:      passengers,
		Mobile:          mobile,
		Created:         s.now(),
		CreatedBy:       utils.FirstNonEmpty(who.Name, in.Username, unknownStaff),
		Status:          StatusReceived,
		Remark:          strings.TrimSpace(in.Remark),
	}, nil
}

// ListQuery selects pending tickets. Filter is MY, ALL, or a staff name.
type ListQuery struct {
	Filter            string
	Type              domain.QueueType
	IncludeDuplicates bool
	Limit             int
}

// List returns pending tickets newest first. Flagged tickets are hidden unless asked for.
// MY without a known caller yields an empty list.
func (s TicketService) List(ctx context.Context, q ListQuery, who domain.Identity) ([]models.Ticket, error) {
	all, err := s.tickets().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "load tickets", Err: err}
	}

	owner := ""
	switch f := strings.TrimSpace(q.Filter); {
	case f == "" || strings.EqualFold(f, "ALL"):
	case strings.EqualFold(f, "MY"):
		if strings.TrimSpace(who.Name) == "" {
			return []models.Ticket{}, nil
		}
		owner = who.Name
	default:
		owner = f
	}

	out := make([]models.Ticket, 0, len(all))
	for _, t := range all {
		if t.DuplicateFlag && !q.IncludeDuplicates {
			continue
		}
		if owner != "" && !utils.EqualFoldTrim(t.CreatedBy, owner) {
			continue
		}
		if !q.Type.Contains(t.Class) {
			continue
		}
		out = append(out, t)
	}
	newestFirst(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// ListDuplicates returns the flagged tickets, newest first.
func (s TicketService) ListDuplicates(ctx context.Context) ([]models.Ticket, error) {
	all, err := s.tickets().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "load tickets", Err: err}
	}
	out := make([]models.Ticket, 0)
	for _, t := range all {
		if t.DuplicateFlag {
			out = append(out, t)
		}
	}
	newestFirst(out)
	return out, nil
}

func (s TicketService) Get(ctx context.Context, id string) (models.Ticket, error) {
	t, ok, err := s.tickets().Get(ctx, id)
	if err != nil {
		return models.Ticket{}, domain.InternalError{Msg: "load tickets", Err: err}
	}
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", ID: id, Msg: "Ticket not found"}
	}
	return t, nil
}

// Update applies a partial edit. Duplicate detection is not re-run; the only flag
// change allowed here is clearing it.
func (s TicketService) Update(ctx context.Context, id string, upd models.TicketUpdate) error {
	if err := normalizeTicketUpdate(&upd); err != nil {
		return err
	}
	ok, err := s.tickets().Update(ctx, id, upd.Fields())
	if err != nil {
		return domain.InternalError{Msg: "update ticket", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "ticket", ID: id, Msg: "Ticket not found"}
	}
	return nil
}

func normalizeTicketUpdate(upd *models.TicketUpdate) error {
	if upd.DuplicateFlag != nil && *upd.DuplicateFlag {
		return domain.ValidationError{Field: "duplicate_flag", Msg: "can only be cleared"}
	}
	for field, p := range map[string]*string{"from_station": upd.FromStation, "to_station": upd.ToStation} {
		if p == nil {
			continue
		}
		*p = utils.StationCode(*p)
		if *p == "" {
			return domain.ValidationError{Field: field, Msg: "cannot be empty"}
		}
	}
	if upd.BoardingStation != nil {
		*upd.BoardingStation = utils.StationCode(*upd.BoardingStation)
	}
	if upd.Class != nil {
		*upd.Class = strings.ToUpper(strings.TrimSpace(*upd.Class))
		if !domain.IsValidClass(*upd.Class) {
			return domain.ValidationError{Field: "class", Msg: "unknown travel class"}
		}
	}
	if upd.JourneyDate != nil {
		*upd.JourneyDate = strings.TrimSpace(*upd.JourneyDate)
		if !utils.IsISODate(*upd.JourneyDate) {
			return domain.ValidationError{Field: "journey_date", Msg: "must be YYYY-MM-DD"}
		}
	}
	return nil
}

func (s TicketService) Delete(ctx context.Context, id string) error {
	ok, err := s.tickets().Delete(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "delete ticket", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "ticket", ID: id, Msg: "Ticket not found"}
	}
	return nil
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports each id independently; a failure never stops the rest.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func runBulk(ids []string, fn func(id string) error) BulkResult {
	res := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		if err := fn(id); err != nil {
			res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

func cleanIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, domain.ValidationError{Field: "ids", Msg: "at least one id is required"}
	}
	return out, nil
}

func (s TicketService) BulkDelete(ctx context.Context, ids []string) (BulkResult, error) {
	clean, err := cleanIDs(ids)
	if err != nil {
		return BulkResult{}, err
	}
	return runBulk(clean, func(id string) error { return s.Delete(ctx, id) }), nil
}

// BulkAssign hands tickets to staff, writing both created_by and assigned_to.
func (s TicketService) BulkAssign(ctx context.Context, ids []string, staff string) (BulkResult, error) {
	staff = strings.TrimSpace(staff)
	if staff == "" {
		return BulkResult{}, domain.ValidationError{Field: "staff", Msg: "is required"}
	}
	clean, err := cleanIDs(ids)
	if err != nil {
		return BulkResult{}, err
	}
	return runBulk(clean, func(id string) error {
		return s.Update(ctx, id, models.TicketUpdate{CreatedBy: &staff, AssignedTo: &staff})
	}), nil
}

func newestFirst(list []models.Ticket) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Created.After(list[j].Created) })
}
