package repositories

import (
	"context"
	"fmt"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/store"
)

// TicketRepository maps the tickets collection onto models.Ticket.
type TicketRepository struct {
	Store store.Store
}

func (r TicketRepository) List(ctx context.Context) ([]models.Ticket, error) {
	recs, err := r.Store.Read(ctx, domain.CollectionTickets)
	if err != nil {
		return nil, err
	}
	out := make([]models.Ticket, 0, len(recs))
	for _, rec := range recs {
		var t models.Ticket
		if err := store.Decode(rec, &t); err != nil {
			return nil, fmt.Errorf("decode ticket %s: %w", rec.ID(), err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns the ticket with id; ok is false when it does not exist.
func (r TicketRepository) Get(ctx context.Context, id string) (models.Ticket, bool, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.Ticket{}, false, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, true, nil
		}
	}
	return models.Ticket{}, false, nil
}

func (r TicketRepository) Insert(ctx context.Context, t models.Ticket) error {
	rec, err := store.Encode(t)
	if err != nil {
		return fmt.Errorf("encode ticket %s: %w", t.ID, err)
	}
	return r.Store.Add(ctx, domain.CollectionTickets, rec)
}

func (r TicketRepository) Update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	return r.Store.Update(ctx, domain.CollectionTickets, id, store.Record(fields))
}

func (r TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.Store.Delete(ctx, domain.CollectionTickets, id)
}

// WithStore returns a copy bound to another store, e.g. a transaction.
func (r TicketRepository) WithStore(s store.Store) TicketRepository {
	return TicketRepository{Store: s}
}
