package service

import (
	"context"
	"fmt"
	"time"

	"mdr-travel/go_backend/internal/domain/analytics"
	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/pipeline"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/store"
)

type BoardCard struct {
	quote.Quote
	Urgency pipeline.Urgency `json:"urgency"`
}

type BoardColumn struct {
	pipeline.Column
	Stats  pipeline.ColumnStats `json:"stats"`
	Quotes []BoardCard          `json:"quotes"`
}

// Board lays out the kanban columns in display order. A date range, when
// given, limits it to quotes created inside it.
func (s *Service) Board(ctx context.Context, from, to *time.Time) ([]BoardColumn, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		start, end := time.Time{}, s.now()
		if from != nil {
			start = *from
		}
		if to != nil {
			end = *to
		}
		quotes = pipeline.FilterByDateRange(quotes, start, end)
	}
	now := s.now()
	grouped := pipeline.Group(quotes)
	stats := pipeline.Stats(quotes)
	out := make([]BoardColumn, 0, len(pipeline.Columns))
	for _, col := range pipeline.Columns {
		cards := make([]BoardCard, 0, len(grouped[col.ID]))
		for _, q := range grouped[col.ID] {
			cards = append(cards, BoardCard{Quote: q, Urgency: pipeline.UrgencyOf(q, now)})
		}
		out = append(out, BoardColumn{Column: col, Stats: stats[col.ID], Quotes: cards})
	}
	return out, nil
}

// MoveQuote changes the quote's stage and notes it on the timeline of the
// client with the same name.
func (s *Service) MoveQuote(ctx context.Context, id string, stage pipeline.Stage) (quote.Quote, error) {
	now := s.now()
	q, err := s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		pipeline.Move(q, stage, now)
		return nil
	})
	if err != nil {
		return quote.Quote{}, err
	}
	if q.Client.Name == "" {
		return q, nil
	}
	target, ok := pipeline.StageOf(q.Status)
	if !ok {
		target = pipeline.StageLead
	}
	err = s.store.MutateClients(ctx, func(clients []client.Client) ([]client.Client, error) {
		for i := range clients {
			if clients[i].Name != q.Client.Name {
				continue
			}
			clients[i].AddEvent(client.Event{
				Type:        client.EventStatusChange,
				Description: fmt.Sprintf("Cotización %s movida a %s", q.ID, pipeline.ColumnName(target)),
				Metadata:    map[string]interface{}{"quoteId": q.ID, "newStage": string(target)},
			}, now)
			break
		}
		return clients, nil
	})
	return q, err
}

func (s *Service) PipelineStats(ctx context.Context) (map[pipeline.Stage]pipeline.ColumnStats, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.Stats(quotes), nil
}

func (s *Service) Conversion(ctx context.Context) (pipeline.Conversion, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return pipeline.Conversion{}, err
	}
	return pipeline.ConversionStats(quotes), nil
}

func (s *Service) ProjectedClosures(ctx context.Context) ([]pipeline.Closure, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.ProjectedClosures(quotes), nil
}

type GoalStatus struct {
	Goal     store.MonthlyGoal `json:"goal"`
	Progress pipeline.Progress `json:"progress"`
}

func (s *Service) GoalProgress(ctx context.Context) (GoalStatus, error) {
	goal, err := s.store.MonthlyGoal(ctx)
	if err != nil {
		return GoalStatus{}, err
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return GoalStatus{}, err
	}
	return GoalStatus{
		Goal:     goal,
		Progress: pipeline.MonthlyProgress(quotes, pipeline.Goal{Target: goal.Target, Month: goal.Month}, s.now()),
	}, nil
}

func (s *Service) SetGoal(ctx context.Context, target float64, month string) (GoalStatus, error) {
	if _, err := s.store.SetMonthlyGoal(ctx, target, month); err != nil {
		return GoalStatus{}, err
	}
	return s.GoalProgress(ctx)
}

// lists loads quotes and clients for the analytics folds.
func (s *Service) lists(ctx context.Context) ([]quote.Quote, []client.Client, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, nil, err
	}
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return nil, nil, err
	}
	return quotes, clients, nil
}

func (s *Service) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	quotes, clients, err := s.lists(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.BuildDashboard(quotes, clients, s.now()), nil
}

func (s *Service) Commissions(ctx context.Context, rate float64) (analytics.Commissions, error) {
	if rate <= 0 {
		rate = analytics.DefaultCommissionRate
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return analytics.Commissions{}, err
	}
	return analytics.ComputeCommissions(quotes, rate), nil
}

func (s *Service) Projection(ctx context.Context) (analytics.Projection, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return analytics.Projection{}, err
	}
	return analytics.RevenueProjection(quotes), nil
}

// Report covers the given month, the current one when year is zero.
func (s *Service) Report(ctx context.Context, year int, month time.Month) (analytics.Report, error) {
	if year == 0 {
		now := s.now()
		year, month = now.Year(), now.Month()
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.MonthlyReport(quotes, year, month), nil
}

func (s *Service) CompareYears(ctx context.Context, from, to int) (analytics.YearComparison, error) {
	if from == 0 && to == 0 {
		to = s.now().Year()
		from = to - 1
	}
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return analytics.YearComparison{}, err
	}
	return analytics.CompareYears(quotes, from, to), nil
}

func (s *Service) TimeToClose(ctx context.Context) (float64, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return 0, err
	}
	return analytics.AverageTimeToClose(quotes), nil
}

func (s *Service) Satisfaction(ctx context.Context) (analytics.Satisfaction, error) {
	quotes, clients, err := s.lists(ctx)
	if err != nil {
		return analytics.Satisfaction{}, err
	}
	return analytics.ComputeSatisfaction(clients, quotes), nil
}

func (s *Service) LeadSources(ctx context.Context) ([]analytics.Source, error) {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.LeadSources(clients), nil
}

func (s *Service) TopDestinations(ctx context.Context, limit int) ([]analytics.Destination, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopDestinations(quotes, limit), nil
}
