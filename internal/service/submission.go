package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rrens/opsflow/internal/analytics"
	"github.com/Rrens/opsflow/internal/authz"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/export"
	"github.com/Rrens/opsflow/internal/metrics"
)

// SubmissionService handles public submissions and their read side
type SubmissionService struct {
	formRepo       domain.FormRepository
	submissionRepo domain.SubmissionRepository
	cache          AnalyticsCache
	access         *access
}

// NewSubmissionService creates a new submission service. cache may be nil.
func NewSubmissionService(
	formRepo domain.FormRepository,
	submissionRepo domain.SubmissionRepository,
	workspaceRepo domain.WorkspaceRepository,
	policy Authorizer,
	cache AnalyticsCache,
) *SubmissionService {
	return &SubmissionService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		cache:          cache,
		access:         &access{workspaces: workspaceRepo, forms: formRepo, policy: policy},
	}
}

// Submit records an anonymous or email-tagged response to a form
func (s *SubmissionService) Submit(ctx context.Context, formID uuid.UUID, input domain.SubmissionCreate) (sub *domain.Submission, err error) {
	defer func() {
		status := metrics.StatusOK
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
			status = metrics.StatusRejected
		default:
			status = metrics.StatusError
		}
		metrics.SubmissionsTotal.WithLabelValues(status).Inc()
	}()

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form == nil {
		return nil, domain.ErrFormNotFound
	}

	data := input.Data
	if data == nil {
		data = map[string]any{}
	}
	if err := domain.ValidateAnswers(form.Content, data); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateRespondentEmail(email); err != nil {
		return nil, err
	}
	if form.Settings.CollectEmails && email == "" {
		return nil, domain.ErrEmailRequired
	}

	sub = &domain.Submission{
		ID:              uuid.New(),
		FormID:          form.ID,
		Data:            data,
		RespondentEmail: email,
		SubmittedAt:     time.Now().UTC(),
	}

	if form.RequiresUniqueRespondent() {
		exists, err := s.submissionRepo.ExistsForRespondent(ctx, form.ID, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check previous submissions: %w", err)
		}
		if exists {
			return nil, domain.ErrDuplicateSubmission
		}
		sub.DedupeKey = email
	}

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	if err := s.formRepo.IncrementSubmissions(ctx, form.ID); err != nil {
		log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("Failed to increment submission count")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, form.ID); err != nil {
			log.Warn().Err(err).Str("form_id", form.ID.String()).Msg("Failed to invalidate analytics cache")
		}
	}

	return sub, nil
}

// List returns one page of submissions, newest first
func (s *SubmissionService) List(ctx context.Context, requesterID, formID uuid.UUID, filter domain.SubmissionFilter) (*domain.SubmissionPage, error) {
	if _, err := s.access.form(ctx, formID, requesterID, authz.ResponseRead); err != nil {
		return nil, err
	}

	filter = filter.Normalize()

	var (
		total int64
		items []*domain.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.submissionRepo.Count(gctx, formID, filter.Search)
		if err != nil {
			return fmt.Errorf("failed to count submissions: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page, err := s.submissionRepo.List(gctx, formID, filter)
		if err != nil {
			return fmt.Errorf("failed to list submissions: %w", err)
		}
		items = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []*domain.Submission{}
	}

	return &domain.SubmissionPage{
		Submissions: items,
		Pagination:  domain.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Export renders every submission of a form as CSV
func (s *SubmissionService) Export(ctx context.Context, requesterID, formID uuid.UUID) ([]byte, error) {
	form, err := s.access.form(ctx, formID, requesterID, authz.ResponseRead)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.ListAll(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, form.Content, subs); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Analytics returns submission counts per day and answer distributions,
// served from the cache when one is configured
func (s *SubmissionService) Analytics(ctx context.Context, requesterID, formID uuid.UUID) (*domain.FormAnalytics, error) {
	form, err := s.access.form(ctx, formID, requesterID, authz.ResponseRead)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, formID)
		if err != nil {
			log.Warn().Err(err).Str("form_id", formID.String()).Msg("Analytics cache read failed")
		}
		if cached != nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	subs, err := s.submissionRepo.ListAll(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	result := analytics.Compute(form.Content, subs)

	if s.cache != nil {
		if err := s.cache.Set(ctx, formID, result); err != nil {
			log.Warn().Err(err).Str("form_id", formID.String()).Msg("Analytics cache write failed")
		}
	}

	return result, nil
}
