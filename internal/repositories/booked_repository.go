package repositories

import (
	"context"
	"fmt"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/store"
)

// BookedRepository maps the booked_tickets collection onto models.BookedTicket.
type BookedRepository struct {
	Store store.Store
}

func (r BookedRepository) List(ctx context.Context) ([]models.BookedTicket, error) {
	recs, err := r.Store.Read(ctx, domain.CollectionBooked)
	if err != nil {
		return nil, err
	}
	out := make([]models.BookedTicket, 0, len(recs))
	for _, rec := range recs {
		var b models.BookedTicket
		if err := store.Decode(rec, &b); err != nil {
			return nil, fmt.Errorf("decode booked ticket %s: %w", rec.ID(), err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r BookedRepository) Get(ctx context.Context, id string) (models.BookedTicket, bool, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.BookedTicket{}, false, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, true, nil
		}
	}
	return models.BookedTicket{}, false, nil
}

func (r BookedRepository) Insert(ctx context.Context, b models.BookedTicket) error {
	rec, err := store.Encode(b)
	if err != nil {
		return fmt.Errorf("encode booked ticket %s: %w", b.ID, err)
	}
	return r.Store.Add(ctx, domain.CollectionBooked, rec)
}

func (r BookedRepository) Update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	return r.Store.Update(ctx, domain.CollectionBooked, id, store.Record(fields))
}

func (r BookedRepository) WithStore(s store.Store) BookedRepository {
	return BookedRepository{Store: s}
}
