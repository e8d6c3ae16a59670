package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

type executionLogStore Persistence

func (s *executionLogStore) Append(_ context.Context, log *models.WorkflowExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	if log.ExecutedAt.IsZero() {
		log.ExecutedAt = time.Now().UTC()
	}

	s.logs = append(s.logs, log)

	return nil
}

func (s *executionLogStore) HistoryForTicket(_ context.Context, ticketID string, limit, offset int) ([]*models.WorkflowExecutionLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []*models.WorkflowExecutionLog

	for _, log := range s.logs {
		if log.TicketID == ticketID {
			history = append(history, log)
		}
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].ExecutedAt.After(history[j].ExecutedAt)
	})

	total := len(history)

	if offset >= total {
		return nil, total, nil
	}

	history = history[offset:]

	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}

	return history, total, nil
}

func (s *executionLogStore) StatsForType(_ context.Context, workflowTypeID string, from, to *time.Time) ([]persistence.StatusStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type aggregate struct {
		count    int
		errors   int
		duration int64
		label    string
	}

	aggregates := make(map[string]*aggregate)

	for _, log := range s.logs {
		if log.WorkflowTypeID != workflowTypeID || !inRange(log.ExecutedAt, from, to) {
			continue
		}

		key := ""
		if log.ToStatusID != nil {
			key = *log.ToStatusID
		}

		agg, ok := aggregates[key]
		if !ok {
			agg = &aggregate{}
			aggregates[key] = agg
		}

		agg.count++
		agg.duration += log.DurationMS

		if log.ErrorMessage != nil {
			agg.errors++
		}

		if label, ok := log.Metadata["to_status_label"].(string); ok && label != "" {
			agg.label = label
		}
	}

	stats := make([]persistence.StatusStat, 0, len(aggregates))

	for statusID, agg := range aggregates {
		stat := persistence.StatusStat{
			ToStatusID:    statusID,
			ToStatusLabel: agg.label,
			Count:         agg.count,
			ErrorCount:    agg.errors,
		}

		if agg.count > 0 {
			stat.AvgDurationMS = float64(agg.duration) / float64(agg.count)
		}

		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ToStatusID < stats[j].ToStatusID
	})

	return stats, nil
}

func (s *executionLogStore) SuccessRateForType(_ context.Context, workflowTypeID string, from, to *time.Time) (persistence.SuccessRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rate persistence.SuccessRate

	for _, log := range s.logs {
		if log.WorkflowTypeID != workflowTypeID || !inRange(log.ExecutedAt, from, to) {
			continue
		}

		rate.Total++

		if log.ErrorMessage == nil {
			rate.Succeeded++
		} else {
			rate.Failed++
		}
	}

	if rate.Total > 0 {
		rate.Rate = float64(rate.Succeeded) / float64(rate.Total)
	}

	return rate, nil
}

func inRange(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}

	if to != nil && at.After(*to) {
		return false
	}

	return true
}
