package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CommitmentService lets supporters see and pause their own commitments
type CommitmentService struct {
	commitments billing.CommitmentRepository
	gateway     PaymentGateway
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewCommitmentService creates a new CommitmentService
func NewCommitmentService(commitments billing.CommitmentRepository, gateway PaymentGateway, publisher shared.EventPublisher, logger *zap.Logger) *CommitmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitmentService{
		commitments: commitments,
		gateway:     gateway,
		publisher:   publisher,
		logger:      logger,
	}
}

// ListMine lists the caller's commitments newest first
func (s *CommitmentService) ListMine(ctx context.Context, actor appshared.Actor) ([]CommitmentResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, shared.ErrUnauthenticated
	}
	items, err := s.commitments.FindByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]CommitmentResponse, len(items))
	for i := range items {
		out[i] = ToCommitmentResponse(&items[i])
	}
	return out, nil
}

// HardshipPause pauses the caller's commitment locally and asks the provider
// to stop collecting. A provider failure is logged and the local pause stands.
func (s *CommitmentService) HardshipPause(ctx context.Context, id uuid.UUID, actor appshared.Actor) (*CommitmentResponse, error) {
	return s.change(ctx, id, actor, (*billing.Commitment).Pause, s.gateway.PauseCollection, "pause")
}

// Resume ends a hardship pause and resumes collection
func (s *CommitmentService) Resume(ctx context.Context, id uuid.UUID, actor appshared.Actor) (*CommitmentResponse, error) {
	return s.change(ctx, id, actor, (*billing.Commitment).Resume, s.gateway.ResumeCollection, "resume")
}

func (s *CommitmentService) change(
	ctx context.Context,
	id uuid.UUID,
	actor appshared.Actor,
	transition func(*billing.Commitment) error,
	sync func(context.Context, string) error,
	action string,
) (*CommitmentResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, shared.ErrUnauthenticated
	}
	c, err := s.commitments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Commitment")
		}
		return nil, err
	}
	if !c.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Commitment belongs to another supporter")
	}
	if err := transition(c); err != nil {
		return nil, err
	}
	if err := s.commitments.Save(ctx, c); err != nil {
		return nil, err
	}

	if err := sync(ctx, c.StripeSubscriptionID); err != nil {
		s.logger.Warn("Payment provider did not accept collection change, local status kept",
			zap.String("commitment_id", c.ID.String()),
			zap.String("action", action),
			zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, c.PullDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish domain events", zap.Error(err))
		}
	}

	s.logger.Info("Commitment status changed by supporter",
		zap.String("commitment_id", c.ID.String()),
		zap.String("action", action),
		zap.String("status", string(c.Status)))

	resp := ToCommitmentResponse(c)
	return &resp, nil
}
