package store

import (
	"context"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/quote"
)

func (s *Store) Quotes(ctx context.Context) ([]quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes(ctx)
}

func (s *Store) quotes(ctx context.Context) ([]quote.Quote, error) {
	var quotes []quote.Quote
	if _, err := s.get(ctx, keyQuotes, &quotes); err != nil {
		return nil, err
	}
	if quotes == nil {
		quotes = []quote.Quote{}
	}
	return quotes, nil
}

func (s *Store) Quote(ctx context.Context, id string) (quote.Quote, error) {
	quotes, err := s.Quotes(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	if i := indexQuote(quotes, id); i >= 0 {
		return quotes[i], nil
	}
	return quote.Quote{}, apperr.NotFound("Cotización no encontrada").WithOp(id)
}

// SaveQuote replaces the quote with the same id in place, refreshing
// updatedAt, or prepends it with createdAt = updatedAt = now. The list is
// trimmed to MaxQuotes and derived fields are recomputed.
func (s *Store) SaveQuote(ctx context.Context, q quote.Quote) (quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.quotes(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	q = s.place(&quotes, q)
	if err := s.putQuotes(ctx, quotes, q.ID); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}

func (s *Store) place(quotes *[]quote.Quote, q quote.Quote) quote.Quote {
	now := s.now()
	q.Recalculate()
	if i := indexQuote(*quotes, q.ID); i >= 0 {
		q.CreatedAt = (*quotes)[i].CreatedAt
		q.UpdatedAt = now
		(*quotes)[i] = q
		return q
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	*quotes = append([]quote.Quote{q}, *quotes...)
	return q
}

// UpdateQuote loads id, applies fn and saves the result in place.
func (s *Store) UpdateQuote(ctx context.Context, id string, fn func(*quote.Quote) error) (quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.quotes(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	i := indexQuote(quotes, id)
	if i < 0 {
		return quote.Quote{}, apperr.NotFound("Cotización no encontrada").WithOp(id)
	}
	q := quotes[i]
	if err := fn(&q); err != nil {
		return quote.Quote{}, err
	}
	q.ID = id
	q = s.place(&quotes, q)
	if err := s.putQuotes(ctx, quotes, q.ID); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}

func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.quotes(ctx)
	if err != nil {
		return err
	}
	i := indexQuote(quotes, id)
	if i < 0 {
		return apperr.NotFound("Cotización no encontrada").WithOp(id)
	}
	quotes = append(quotes[:i], quotes[i+1:]...)
	return s.putQuotes(ctx, quotes, "")
}

// putQuotes caps and writes the list. changed names the quote the caller just
// saved; it survives a quota trim.
func (s *Store) putQuotes(ctx context.Context, quotes []quote.Quote, changed string) error {
	if len(quotes) > MaxQuotes {
		quotes = quotes[:MaxQuotes]
	}
	return s.putKeeping(ctx, keyQuotes, quotes, changed)
}

func indexQuote(quotes []quote.Quote, id string) int {
	for i, q := range quotes {
		if q.ID == id {
			return i
		}
	}
	return -1
}
