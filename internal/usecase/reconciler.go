package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// PitcherResolver turns a probable pitcher into a fact. It never fails.
type PitcherResolver interface {
	ResolvePitcherERA(ctx context.Context, team, name string, forceRefresh bool) pitcher.Fact
}

// Reconciler walks an ordered list of fetchers and keeps the first usable
// answer. It never merges values from different sources.
type Reconciler struct {
	fetchers []pitcher.Fetcher
	logger   *logging.Logger
}

func NewReconciler(fetchers []pitcher.Fetcher, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	ordered := make([]pitcher.Fetcher, 0, len(fetchers))
	for _, fetcher := range fetchers {
		if fetcher != nil {
			ordered = append(ordered, fetcher)
		}
	}
	return &Reconciler{fetchers: ordered, logger: logger}
}

// Sources lists the configured chain in order.
func (r *Reconciler) Sources() []pitcher.Source {
	out := make([]pitcher.Source, 0, len(r.fetchers))
	for _, fetcher := range r.fetchers {
		out = append(out, fetcher.Source())
	}
	return out
}

func (r *Reconciler) ResolvePitcherERA(ctx context.Context, team, name string, forceRefresh bool) pitcher.Fact {
	ctx, span := startUsecaseSpan(ctx, "usecase.Reconciler.ResolvePitcherERA")
	defer span.End()

	query := pitcher.Query{Team: team, Name: name, ForceRefresh: forceRefresh}.Normalize()
	attempts := make([]pitcher.Attempt, 0, len(r.fetchers))

	for i, fetcher := range r.fetchers {
		if err := ctx.Err(); err != nil {
			for _, rest := range r.fetchers[i:] {
				attempts = append(attempts, pitcher.Attempt{Source: rest.Source(), Outcome: pitcher.OutcomeSkipped, Detail: err.Error()})
			}
			break
		}

		start := time.Now()
		fact, ok := fetcher.FetchPitcherFact(ctx, query)
		attempt := pitcher.Attempt{Source: fetcher.Source(), Duration: time.Since(start)}
		if !ok || !fact.HasUsableERA() {
			attempt.Outcome = pitcher.OutcomeMiss
			attempts = append(attempts, attempt)
			continue
		}

		attempt.Outcome = pitcher.OutcomeHit
		if fact.Cached {
			attempt.Outcome = pitcher.OutcomeCached
		}
		attempts = append(attempts, attempt)

		if strings.TrimSpace(fact.Name) == "" {
			fact.Name = query.Name
		}
		if strings.TrimSpace(fact.Team) == "" {
			fact.Team = query.Team
		}
		metrics.ObserveReconcile(string(fact.Source))
		span.SetAttributes(attribute.String("pitcher.source", string(fact.Source)))
		return fact.WithProvenance(attempts)
	}

	r.logger.InfoContext(ctx, "no source had a usable era, using default",
		"team", query.Team,
		"pitcher", query.Name,
		"attempts", len(attempts),
	)
	metrics.ObserveReconcile(string(pitcher.SourceDefault))
	return pitcher.DefaultFact(query.Team, query.Name).WithProvenance(attempts)
}
