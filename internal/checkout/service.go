package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/internal/cart"
	"github.com/nadiaferrer/studiohub-backend/internal/enrollments"
	"github.com/nadiaferrer/studiohub-backend/internal/profiles"
	"github.com/nadiaferrer/studiohub-backend/internal/programs"
	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/metrics"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox/payloads"
)

// Service turns an active cart into durable enrollments.
type Service interface {
	Complete(ctx context.Context, accountID, cartID uuid.UUID) (*CommitResult, error)
}

type service struct {
	dbc     *db.Client
	carts   *cart.Repository
	progs   *programs.Repository
	profs   *profiles.Repository
	enrolls *enrollments.Repository
	outbox  *outbox.Service
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// txRepos carries the transaction-scoped repositories through one commitment.
type txRepos struct {
	carts       *cart.Repository
	programs    *programs.Repository
	profiles    *profiles.Repository
	enrollments *enrollments.Repository
}

// NewService wires the commitment engine. The outbox service and metrics may
// be nil; commitments still succeed without them.
func NewService(
	dbc *db.Client,
	carts *cart.Repository,
	progs *programs.Repository,
	profs *profiles.Repository,
	enrolls *enrollments.Repository,
	outboxSvc *outbox.Service,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) Service {
	return &service{
		dbc:     dbc,
		carts:   carts,
		progs:   progs,
		profs:   profs,
		enrolls: enrolls,
		outbox:  outboxSvc,
		metrics: checkoutMetrics,
		logg:    logg,
	}
}

// Complete commits the cart: it validates ownership and state, drops items
// the participant is already enrolled in, freezes participant snapshots,
// decides admission for every remaining item, and only then writes. All
// writes share one serializable transaction, so a rejection anywhere leaves
// no trace. Cart finalization runs after commit and is best effort.
func (s *service) Complete(ctx context.Context, accountID, cartID uuid.UUID) (*CommitResult, error) {
	start := time.Now()

	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account required")
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	if s.logg != nil {
		ctx = s.logg.WithCartID(s.logg.WithAccountID(ctx, accountID.String()), cartID.String())
	}

	var result *CommitResult
	err := s.dbc.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repos := txRepos{
			carts:       s.carts.WithTx(tx),
			programs:    s.progs.WithTx(tx),
			profiles:    s.profs.WithTx(tx),
			enrollments: s.enrolls.WithTx(tx),
		}

		committed, cerr := s.commit(ctx, tx, repos, accountID, cartID)
		if cerr != nil {
			return cerr
		}
		result = committed
		return nil
	})
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout commitment failed")
		}
		s.metrics.IncRejected(string(typed.Code()))
		s.metrics.ObserveDuration("rejected", time.Since(start))
		return nil, typed
	}

	s.finalizeCart(ctx, cartID)

	s.metrics.AddCommitted(result.InsertedCount)
	s.metrics.AddUpgraded(result.UpgradedCount)
	s.metrics.ObserveDuration("committed", time.Since(start))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"inserted": result.InsertedCount,
			"upgraded": result.UpgradedCount,
			"skipped":  len(result.SkippedProgramIDs),
		})
		s.logg.Info(logCtx, "checkout committed")
	}
	return result, nil
}

// commit is the transactional body of Complete.
func (s *service) commit(
	ctx context.Context,
	tx *gorm.DB,
	repos txRepos,
	accountID, cartID uuid.UUID,
) (*CommitResult, *pkgerrors.Error) {
	record, err := repos.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cart lookup failed")
	}
	if record.AccountID != accountID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart does not belong to caller")
	}
	if record.Status != enums.CartStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is not active")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	account, err := repos.profiles.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "account lookup failed")
	}

	existing, err := repos.enrollments.ListActiveForAccount(ctx, accountID, distinctProgramIDs(record.Items))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enrollment lookup failed")
	}

	kept, skipped := partitionDuplicates(record.Items, existing)
	if len(kept) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no new enrollments").
			WithDetails(map[string]any{"duplicate_program_ids": programIDStrings(skipped)})
	}

	dependents, cerr := s.loadOwnedDependents(ctx, repos, accountID, kept)
	if cerr != nil {
		return nil, cerr
	}

	snapshots, cerr := resolveSnapshots(account, dependents, kept)
	if cerr != nil {
		return nil, cerr
	}

	decisions, cerr := s.decideAdmissions(ctx, repos, accountID, kept)
	if cerr != nil {
		return nil, cerr
	}

	committed, upgradedCount, cerr := s.commitEnrollments(ctx, repos, accountID, kept, decisions, snapshots)
	if cerr != nil {
		return nil, cerr
	}

	result := &CommitResult{
		CartID:            cartID,
		Enrollments:       committed,
		InsertedCount:     len(committed) - upgradedCount,
		UpgradedCount:     upgradedCount,
		SkippedProgramIDs: skippedProgramIDs(skipped),
	}

	if s.outbox != nil {
		event := outbox.DomainEvent{
			EventType:     enums.EventEnrollmentCommitted,
			AggregateType: enums.AggregateCart,
			AggregateID:   cartID,
			Actor:         &outbox.ActorRef{AccountID: accountID},
			Data: payloads.EnrollmentCommittedEvent{
				CartID:        cartID,
				AccountID:     accountID,
				EnrollmentIDs: result.EnrollmentIDs(),
				UpgradedCount: result.UpgradedCount,
				InsertedCount: result.InsertedCount,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "outbox emit failed")
		}
	}
	return result, nil
}

// loadOwnedDependents resolves every dependent profile referenced by the
// items and verifies the caller owns each one.
func (s *service) loadOwnedDependents(
	ctx context.Context,
	repos txRepos,
	accountID uuid.UUID,
	items []models.CartItem,
) (map[uuid.UUID]models.DependentProfile, *pkgerrors.Error) {
	var ids []uuid.UUID
	wanted := make(map[uuid.UUID]struct{})
	for _, item := range items {
		if item.DependentProfileID == nil {
			continue
		}
		if _, ok := wanted[*item.DependentProfileID]; ok {
			continue
		}
		wanted[*item.DependentProfileID] = struct{}{}
		ids = append(ids, *item.DependentProfileID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := repos.profiles.ListDependentsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dependent lookup failed")
	}
	byID := make(map[uuid.UUID]models.DependentProfile, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		profile, ok := byID[id]
		if !ok || profile.AccountID != accountID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dependent profile is not owned by caller")
		}
	}
	return byID, nil
}

// finalizeCart retires the cart after the enrollments are durable. Failures
// here are logged and swallowed; the enrollments already committed.
func (s *service) finalizeCart(ctx context.Context, cartID uuid.UUID) {
	if err := s.carts.MarkCompleted(ctx, cartID); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart finalization failed")
		}
		return
	}
	if err := s.carts.DeleteItems(ctx, cartID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart item cleanup failed")
	}
}

func programIDStrings(items []models.CartItem) []string {
	out := make([]string, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProgramID]; ok {
			continue
		}
		seen[item.ProgramID] = struct{}{}
		out = append(out, item.ProgramID.String())
	}
	return out
}

func skippedProgramIDs(items []models.CartItem) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProgramID]; ok {
			continue
		}
		seen[item.ProgramID] = struct{}{}
		out = append(out, item.ProgramID)
	}
	return out
}
