// Package pipeline orchestrates one digest run: fetch, ingest, retrieve,
// rank, distribute, summarize, assemble, deliver.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/digest"
	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
	"github.com/aithena-cloud/aithena/internal/logger"
	"github.com/aithena-cloud/aithena/internal/metrics"
)

// summaryFallbackLen is how much article text is kept when summarization
// fails and the digest falls back to truncated content.
const summaryFallbackLen = 200

// PreferenceInput is one user preference as configured, pre-validation.
type PreferenceInput struct {
	Name     string
	Keywords []string
}

// Params tunes one pipeline run.
type Params struct {
	// KPerPreference is the nearest-neighbor breadth per preference.
	KPerPreference int
	// QuotaPerPreference caps each digest section.
	QuotaPerPreference int
	// UserName personalizes the digest greeting.
	UserName string
}

// Service runs the digest pipeline. Stages execute sequentially per
// preference; a run always produces a digest and a manifest, and fails
// only when the article store is unavailable.
type Service struct {
	retriever  Retriever
	ranker     Ranker
	summarizer Summarizer
	source     Source
	deliverers []digest.Deliverer
}

// New creates a pipeline service. source may be nil (no fresh acquisition);
// deliverers may be empty (assemble only).
func New(retriever Retriever, ranker Ranker, summarizer Summarizer, source Source, deliverers []digest.Deliverer) *Service {
	return &Service{
		retriever:  retriever,
		ranker:     ranker,
		summarizer: summarizer,
		source:     source,
		deliverers: deliverers,
	}
}

// Run executes one full digest run for the given preferences. Invalid
// preferences (blank name and no keywords) produce an empty section and are
// counted in the manifest. The returned digest keeps one section per input
// preference, in input order.
func (s *Service) Run(ctx context.Context, prefsIn []PreferenceInput, params Params) (digest.Digest, domain.RunReport, error) {
	log := logger.FromContext(ctx)

	var report domain.RunReport
	d := digest.Digest{
		UserName:    params.UserName,
		GeneratedAt: time.Now(),
		Sections:    make([]digest.Section, len(prefsIn)),
	}

	// Validate preferences; invalid ones keep their (empty) section.
	valid := make([]preference.Preference, 0, len(prefsIn))
	validIdx := make([]int, 0, len(prefsIn))
	for i, in := range prefsIn {
		d.Sections[i].Preference = sectionName(in)
		p, err := preference.New(in.Name, in.Keywords)
		if err != nil {
			log.Warn("skipping invalid preference", zap.Int("position", i), zap.Error(err))
			report.InvalidPreferences++
			continue
		}
		valid = append(valid, p)
		validIdx = append(validIdx, i)
	}

	if err := s.fetchAndIngest(ctx, valid, &report); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return d, report, err
	}

	ranked, err := s.retrieveAndRank(ctx, valid, params, &report)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return d, report, err
	}

	s.assemble(ctx, &d, ranked, validIdx, &report)
	s.deliver(ctx, d, &report)

	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	log.Info("pipeline run complete",
		zap.Int("fetched", report.Fetched),
		zap.Int("added", report.Ingest.Added),
		zap.Int("duplicates", report.Ingest.Duplicates),
		zap.Int("skipped", report.Ingest.Skipped),
		zap.Int("retrieved", report.Retrieved),
		zap.Int("retrieve_failures", report.RetrieveFailures),
		zap.Int("ranked", report.Ranked),
		zap.Int("invalid_preferences", report.InvalidPreferences),
		zap.Int("summary_fallbacks", report.SummaryFallbacks),
		zap.Bool("delivered", report.Delivered))
	return d, report, nil
}

// fetchAndIngest pulls fresh articles for the preference topics (when a
// source is configured) and ingests them. Fetch failures are logged and the
// run continues on stored content; ingest failures are fatal.
func (s *Service) fetchAndIngest(ctx context.Context, prefs []preference.Preference, report *domain.RunReport) error {
	log := logger.FromContext(ctx)

	if s.source == nil {
		return nil
	}

	timer := prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("fetch"))
	topics := make([]string, len(prefs))
	for i := range prefs {
		topics[i] = prefs[i].Name()
	}
	fresh, err := s.source.FetchFresh(ctx, topics)
	timer.ObserveDuration()
	if err != nil {
		log.Warn("fetching fresh articles failed, continuing with stored content", zap.Error(err))
		return nil
	}
	report.Fetched = len(fresh)
	if len(fresh) == 0 {
		return nil
	}

	timer = prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("ingest"))
	ingestReport, err := s.retriever.Ingest(ctx, fresh)
	timer.ObserveDuration()
	report.Ingest = ingestReport
	metrics.PipelineArticlesTotal.WithLabelValues("added").Add(float64(ingestReport.Added))
	metrics.PipelineArticlesTotal.WithLabelValues("duplicate").Add(float64(ingestReport.Duplicates))
	metrics.PipelineArticlesTotal.WithLabelValues("skipped").Add(float64(ingestReport.Skipped))
	if err != nil {
		return fmt.Errorf("ingest fresh articles: %w", err)
	}
	return nil
}

func (s *Service) retrieveAndRank(ctx context.Context, prefs []preference.Preference, params Params, report *domain.RunReport) ([][]domain.RankedArticle, error) {
	timer := prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("retrieve"))
	candidates, failed, err := s.retriever.Retrieve(ctx, prefs, params.KPerPreference)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	report.RetrieveFailures = failed
	for _, list := range candidates {
		report.Retrieved += len(list)
	}

	timer = prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("rank"))
	ranked := s.ranker.Rank(ctx, prefs, candidates)
	ranked = s.ranker.Distribute(ranked, params.QuotaPerPreference)
	timer.ObserveDuration()
	for _, list := range ranked {
		report.Ranked += len(list)
	}
	metrics.PipelineArticlesTotal.WithLabelValues("ranked").Add(float64(report.Ranked))
	return ranked, nil
}

// assemble summarizes the selected articles and fills the digest sections.
// Summaries are memoized by article ID so an article shared across
// preferences is summarized once.
func (s *Service) assemble(ctx context.Context, d *digest.Digest, ranked [][]domain.RankedArticle, validIdx []int, report *domain.RunReport) {
	log := logger.FromContext(ctx)

	timer := prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("summarize"))
	defer timer.ObserveDuration()

	memo := make(map[string]string)
	for p, list := range ranked {
		items := make([]digest.Item, 0, len(list))
		for i := range list {
			art := list[i].Article
			summary, ok := memo[art.ID()]
			if !ok && s.summarizer == nil {
				// No summarizer configured: truncated text, not a fallback.
				summary = truncate(art.Text(), summaryFallbackLen)
				memo[art.ID()] = summary
				ok = true
			}
			if !ok {
				var err error
				summary, err = s.summarizer.Summarize(ctx, art.Text())
				if err != nil {
					log.Warn("summarization failed, using truncated text",
						zap.String("article_id", art.ID()),
						zap.Error(err))
					summary = truncate(art.Text(), summaryFallbackLen)
					report.SummaryFallbacks++
					metrics.PipelineArticlesTotal.WithLabelValues("summary_fallback").Inc()
				}
				memo[art.ID()] = summary
			}
			items = append(items, digest.Item{
				ID:            art.ID(),
				Title:         art.Title(),
				Summary:       summary,
				Source:        art.Source(),
				URL:           art.URL(),
				SemanticScore: list[i].SemanticScore,
				LexicalScore:  list[i].LexicalScore,
			})
		}
		d.Sections[validIdx[p]].Items = items
	}
}

// deliver ships the digest over every configured channel. Delivery errors
// are logged; the run stays successful if at least one channel succeeds or
// none are configured.
func (s *Service) deliver(ctx context.Context, d digest.Digest, report *domain.RunReport) {
	if len(s.deliverers) == 0 {
		return
	}
	log := logger.FromContext(ctx)

	timer := prometheus.NewTimer(metrics.PipelineStageDuration.WithLabelValues("deliver"))
	defer timer.ObserveDuration()

	for _, dl := range s.deliverers {
		if err := dl.Deliver(ctx, d); err != nil {
			log.Error("digest delivery failed",
				zap.String("channel", dl.Name()),
				zap.Error(err))
			continue
		}
		report.Delivered = true
	}
}

func sectionName(in PreferenceInput) string {
	if in.Name != "" {
		return in.Name
	}
	if len(in.Keywords) > 0 {
		return in.Keywords[0]
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
