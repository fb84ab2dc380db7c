package minutes

import (
	"context"
	"errors"

	"easyminutes/internal/entitlement"
	"easyminutes/internal/metrics"
	"easyminutes/internal/subscription"
	"easyminutes/internal/summarize"
	"easyminutes/internal/usage"

	"github.com/google/uuid"
)

var ErrAudioNotAllowed = errors.New("audio transcription requires a subscription")

// GenerateResult is what one generation produced. Saved is false when the
// caller's plan cannot persist minutes; the content is still returned.
type GenerateResult struct {
	Minute *Minute            `json:"minute,omitempty"`
	Output *summarize.Minutes `json:"output"`
	Saved  bool               `json:"saved"`
}

type Service interface {
	Generate(ctx context.Context, userID int, in summarize.Input) (*GenerateResult, *entitlement.Decision, error)
	GenerateAnonymous(ctx context.Context, sessionID string, in summarize.Input) (*summarize.Minutes, bool, error)
	Get(ctx context.Context, userID int, id uuid.UUID) (*Minute, error)
	List(ctx context.Context, userID int) ([]*Minute, error)
	Update(ctx context.Context, userID int, id uuid.UUID, req UpdateRequest) (*Minute, *entitlement.Decision, error)
	Delete(ctx context.Context, userID int, id uuid.UUID) error
	Export(ctx context.Context, userID int, id uuid.UUID) (*Minute, *entitlement.Decision, error)
	Share(ctx context.Context, userID int, id uuid.UUID) (string, *entitlement.Decision, error)
	GetShared(ctx context.Context, token string) (*Minute, error)
}

type service struct {
	repo       Repository
	subs       subscription.Repository
	resolver   *entitlement.Resolver
	gate       *usage.Gate
	summarizer summarize.Client
}

func NewService(
	repo Repository,
	subs subscription.Repository,
	resolver *entitlement.Resolver,
	gate *usage.Gate,
	summarizer summarize.Client,
) Service {
	return &service{
		repo:       repo,
		subs:       subs,
		resolver:   resolver,
		gate:       gate,
		summarizer: summarizer,
	}
}

// Generate runs one metered summarization for a subscribed user. The quota
// is consumed only after the summarizer succeeds, so failures stay free.
func (s *service) Generate(ctx context.Context, userID int, in summarize.Input) (*GenerateResult, *entitlement.Decision, error) {
	if in.IsAudio() {
		decision, err := s.resolver.Check(ctx, userID, entitlement.CapabilityAudioTranscription)
		if err != nil {
			return nil, nil, err
		}
		if !decision.Allowed {
			return nil, &decision, nil
		}
	}

	decision, err := s.resolver.Check(ctx, userID, entitlement.CapabilityGenerate)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}

	output, err := s.summarizer.Summarize(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	if err := s.subs.IncrementMeetingsUsed(ctx, userID); err != nil {
		// The row disappearing between check and increment means the
		// quota ran out in a race; treat it as a denial, not a failure.
		if errors.Is(err, subscription.ErrNotFound) {
			d := entitlement.Decision{Allowed: false, Reason: entitlement.ReasonQuotaExceeded}
			return nil, &d, nil
		}
		return nil, nil, err
	}
	metrics.RecordGeneration("subscription")

	result := &GenerateResult{Output: output}

	saveDecision, err := s.resolver.Check(ctx, userID, entitlement.CapabilitySave)
	if err != nil {
		return nil, nil, err
	}
	if saveDecision.Allowed {
		minute, err := s.repo.Create(ctx, fromOutput(userID, output))
		if err != nil {
			return nil, nil, err
		}
		result.Minute = minute
		result.Saved = true
	}

	return result, nil, nil
}

// GenerateAnonymous serves free sessions with no billing relationship. The
// session gate caps invocations; audio input is refused outright because
// transcription is plan-gated.
func (s *service) GenerateAnonymous(ctx context.Context, sessionID string, in summarize.Input) (*summarize.Minutes, bool, error) {
	if in.IsAudio() {
		return nil, false, ErrAudioNotAllowed
	}

	output, ok, err := usage.GateAndGenerate(ctx, s.gate, sessionID, nil, func(ctx context.Context) (*summarize.Minutes, error) {
		return s.summarizer.Summarize(ctx, in)
	})
	if err != nil || !ok {
		return nil, ok, err
	}

	metrics.RecordGeneration("session")
	return output, true, nil
}

func (s *service) Get(ctx context.Context, userID int, id uuid.UUID) (*Minute, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *service) List(ctx context.Context, userID int) ([]*Minute, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID int, id uuid.UUID, req UpdateRequest) (*Minute, *entitlement.Decision, error) {
	decision, err := s.resolver.Check(ctx, userID, entitlement.CapabilitySave)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}

	minute, err := s.repo.Update(ctx, userID, id, req)
	return minute, nil, err
}

func (s *service) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *service) Export(ctx context.Context, userID int, id uuid.UUID) (*Minute, *entitlement.Decision, error) {
	decision, err := s.resolver.Check(ctx, userID, entitlement.CapabilityExport)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}

	minute, err := s.repo.GetByID(ctx, userID, id)
	return minute, nil, err
}

func (s *service) Share(ctx context.Context, userID int, id uuid.UUID) (string, *entitlement.Decision, error) {
	decision, err := s.resolver.Check(ctx, userID, entitlement.CapabilityShare)
	if err != nil {
		return "", nil, err
	}
	if !decision.Allowed {
		return "", &decision, nil
	}

	token := uuid.NewString()
	if err := s.repo.SetShareToken(ctx, userID, id, token); err != nil {
		return "", nil, err
	}

	return token, nil, nil
}

func (s *service) GetShared(ctx context.Context, token string) (*Minute, error) {
	return s.repo.GetByShareToken(ctx, token)
}

func fromOutput(userID int, out *summarize.Minutes) *Minute {
	items := make(ActionItems, 0, len(out.ActionItems))
	for _, item := range out.ActionItems {
		items = append(items, ActionItem{Task: item.Task, Owner: item.Owner})
	}

	return &Minute{
		UserID:      userID,
		Title:       out.Title,
		Attendees:   out.Attendees,
		Summary:     out.Summary,
		KeyPoints:   out.KeyPoints,
		ActionItems: items,
		Decisions:   out.Decisions,
	}
}
