package store

import (
	"context"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/client"
)

func (s *Store) Clients(ctx context.Context) ([]client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients(ctx)
}

func (s *Store) clients(ctx context.Context) ([]client.Client, error) {
	var clients []client.Client
	if _, err := s.get(ctx, keyClients, &clients); err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []client.Client{}
	}
	return clients, nil
}

func (s *Store) Client(ctx context.Context, id string) (client.Client, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return client.Client{}, err
	}
	if i := client.IndexOf(clients, id); i >= 0 {
		return clients[i], nil
	}
	return client.Client{}, apperr.NotFound("Cliente no encontrado").WithOp(id)
}

func (s *Store) SaveClients(ctx context.Context, clients []client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyClients, clients)
}

// SaveClient updates in place (refreshing updatedAt) or prepends a new client,
// assigning an id when it has none.
func (s *Store) SaveClient(ctx context.Context, c client.Client) (client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients(ctx)
	if err != nil {
		return client.Client{}, err
	}
	now := s.now()
	if i := client.IndexOf(clients, c.ID); c.ID != "" && i >= 0 {
		c.CreatedAt = clients[i].CreatedAt
		c.UpdatedAt = now
		clients[i] = c
	} else {
		if c.ID == "" {
			c.ID = client.NewID()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = c.CreatedAt
		clients = append([]client.Client{c}, clients...)
	}
	if err := s.put(ctx, keyClients, clients); err != nil {
		return client.Client{}, err
	}
	return c, nil
}

// MutateClients runs fn over the full client list under the store lock and
// persists what it returns.
func (s *Store) MutateClients(ctx context.Context, fn func([]client.Client) ([]client.Client, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients(ctx)
	if err != nil {
		return err
	}
	next, err := fn(clients)
	if err != nil {
		return err
	}
	return s.put(ctx, keyClients, next)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.MutateClients(ctx, func(clients []client.Client) ([]client.Client, error) {
		i := client.IndexOf(clients, id)
		if i < 0 {
			return nil, apperr.NotFound("Cliente no encontrado").WithOp(id)
		}
		return append(clients[:i], clients[i+1:]...), nil
	})
}
