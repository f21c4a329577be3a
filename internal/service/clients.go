package service

import (
	"context"
	"io"
	"strings"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/quote"
)

type ClientFilter struct {
	Query  string
	Status client.Status
	Tags   []string
}

func (s *Service) ListClients(ctx context.Context, f ClientFilter) ([]client.Client, error) {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return nil, err
	}
	if f.Query != "" {
		clients = client.Search(clients, f.Query)
	}
	if f.Status != "" {
		clients = client.FilterByStatus(clients, f.Status)
	}
	if len(f.Tags) > 0 {
		clients = client.FilterByTags(clients, f.Tags)
	}
	if clients == nil {
		clients = []client.Client{}
	}
	return clients, nil
}

func (s *Service) GetClient(ctx context.Context, id string) (client.Client, error) {
	return s.store.Client(ctx, id)
}

func (s *Service) CreateClient(ctx context.Context, in client.Input) (client.Client, error) {
	if err := in.Validate(); err != nil {
		return client.Client{}, err
	}
	return s.store.SaveClient(ctx, client.New(in, s.now()))
}

func (s *Service) UpdateClient(ctx context.Context, id string, in client.Input) (client.Client, error) {
	if err := in.Validate(); err != nil {
		return client.Client{}, err
	}
	var out client.Client
	err := s.mutateClient(ctx, id, func(c *client.Client) error {
		c.Update(in, s.now())
		out = *c
		return nil
	})
	return out, err
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	return s.store.DeleteClient(ctx, id)
}

func (s *Service) mutateClient(ctx context.Context, id string, fn func(*client.Client) error) error {
	return s.store.MutateClients(ctx, func(clients []client.Client) ([]client.Client, error) {
		i := client.IndexOf(clients, id)
		if i < 0 {
			return nil, apperr.NotFound("Cliente no encontrado").WithOp(id)
		}
		if err := fn(&clients[i]); err != nil {
			return nil, err
		}
		return clients, nil
	})
}

var eventTypes = map[string]bool{
	client.EventCreated: true, client.EventNote: true, client.EventQuote: true,
	client.EventCall: true, client.EventEmail: true, client.EventMeeting: true,
	client.EventStatusChange: true,
}

func (s *Service) AddTimelineEvent(ctx context.Context, id string, e client.Event) (client.Event, error) {
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		return client.Event{}, apperr.Validation("La descripción del evento es requerida")
	}
	if e.Type != "" && !eventTypes[e.Type] {
		return client.Event{}, apperr.Validation("Tipo de evento inválido")
	}
	var out client.Event
	err := s.mutateClient(ctx, id, func(c *client.Client) error {
		out = c.AddEvent(e, s.now())
		return nil
	})
	return out, err
}

func (s *Service) AddTag(ctx context.Context, id, tag string) (client.Client, error) {
	if strings.TrimSpace(tag) == "" {
		return client.Client{}, apperr.Validation("La etiqueta no puede estar vacía")
	}
	var out client.Client
	err := s.mutateClient(ctx, id, func(c *client.Client) error {
		c.AddTag(tag, s.now())
		out = *c
		return nil
	})
	return out, err
}

func (s *Service) RemoveTag(ctx context.Context, id, tag string) (client.Client, error) {
	var out client.Client
	err := s.mutateClient(ctx, id, func(c *client.Client) error {
		c.RemoveTag(tag, s.now())
		out = *c
		return nil
	})
	return out, err
}

func (s *Service) ClientQuotes(ctx context.Context, id string) ([]quote.Quote, error) {
	c, err := s.store.Client(ctx, id)
	if err != nil {
		return nil, err
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	out := client.Quotes(c, quotes)
	if out == nil {
		out = []quote.Quote{}
	}
	return out, nil
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return client.AllTags(clients), nil
}

func (s *Service) ClientStats(ctx context.Context) (client.Stats, error) {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return client.Stats{}, err
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return client.Stats{}, err
	}
	return client.ComputeStats(clients, len(quotes), s.now()), nil
}

func (s *Service) ExportClientsCSV(ctx context.Context, w io.Writer) error {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return err
	}
	return client.WriteCSV(w, clients)
}

func (s *Service) ExportClientsXLSX(ctx context.Context, w io.Writer) error {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return err
	}
	return client.WriteXLSX(w, clients)
}
