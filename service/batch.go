package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/webhook"
)

// LookupBatch resolves a list of URLs with bounded concurrency. The
// returned slice is index-aligned with urls regardless of completion
// order, and always has exactly len(urls) entries: failures occupy their
// slot as a status string instead of being dropped.
func (s *Service) LookupBatch(ctx context.Context, urls []string) []models.BatchOutcome {
	outcomes := make([]models.BatchOutcome, len(urls))
	concurrency := s.batch.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = s.lookupOne(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return outcomes
}

// lookupOne wraps Lookup so one panicking URL cannot take down the whole
// batch: the slot reports "error" and the rest of the batch proceeds.
func (s *Service) lookupOne(ctx context.Context, u string) (out models.BatchOutcome) {
	out = models.BatchOutcome{URL: u}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during price lookup", "url", u, "panic", r)
			out = models.BatchOutcome{URL: u, Status: models.OutcomeError}
		}
	}()

	result, err := s.Lookup(ctx, u)
	if err != nil {
		out.Status = statusFromError(err)
		return out
	}
	out.Price = result.Price
	out.Found = true
	return out
}

// statusFromError maps a lookup failure to its batch outcome string.
func statusFromError(err error) string {
	var le *models.LookupError
	if !errors.As(err, &le) {
		return models.OutcomeError
	}
	switch le.Code {
	case models.ErrCodeInvalidInput:
		return models.OutcomeInvalidURL
	case models.ErrCodeOutOfStock:
		return string(models.StatusOutOfStock)
	case models.ErrCodeInvalidPage:
		return string(models.StatusInvalidPage)
	case models.ErrCodePageNotFound:
		return string(models.StatusPageNotFound)
	case models.ErrCodePriceNotFound:
		return string(models.StatusNotFound)
	default:
		return models.OutcomeError
	}
}

// LookupAsync runs a batch in the background and pushes the completed
// results to deliverTo as a signed webhook event. It returns immediately
// with the job id the event will carry.
func (s *Service) LookupAsync(urls []string, deliverTo string) string {
	jobID := "price-" + randomID()
	go func() {
		started := time.Now()
		outcomes := s.LookupBatch(context.Background(), urls)

		found := 0
		for _, o := range outcomes {
			if o.Found {
				found++
			}
		}
		slog.Info("async batch completed",
			"job_id", jobID,
			"total", len(urls),
			"found", found,
			"duration", time.Since(started).Round(time.Millisecond),
		)

		webhook.DeliverAsync(deliverTo, s.webhook.Secret, &webhook.Event{
			Type:      "price.batch.completed",
			JobID:     jobID,
			Timestamp: time.Now().Unix(),
			Data: map[string]any{
				"results": outcomes,
				"total":   len(outcomes),
				"found":   found,
			},
		})
	}()
	return jobID
}

func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}
