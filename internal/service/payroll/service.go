package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
	"golang.org/x/sync/errgroup"
)

// CommitMode decides how duplicates are treated on commit.
type CommitMode int

const (
	// CommitSingle rejects an existing breakdown with a conflict.
	CommitSingle CommitMode = iota
	// CommitBatch skips existing breakdowns and keeps going past failures.
	CommitBatch
)

// batchWorkers bounds how many contracts a batch preview computes at once.
const batchWorkers = 8

type CommitResult struct {
	Created []payroll.Breakdown
	Skipped int
}

// Service computes and persists payroll breakdowns. Reads take no locks: an
// approval landing between a preview and its commit is not seen by that run,
// and commit re-checks existence right before each insert.
type Service struct {
	tx         database.Transactor
	contracts  contract.ContractRepository
	requests   request.RequestRepository
	concepts   payroll.ConceptRepository
	breakdowns payroll.BreakdownRepository
	resolver   *Resolver
	calendars  *calendar.Source
	engine     *Engine
	now        func() time.Time
}

func NewService(
	tx database.Transactor,
	contracts contract.ContractRepository,
	requests request.RequestRepository,
	concepts payroll.ConceptRepository,
	breakdowns payroll.BreakdownRepository,
	calendars *calendar.Source,
	engine *Engine,
) *Service {
	return &Service{
		tx:         tx,
		contracts:  contracts,
		requests:   requests,
		concepts:   concepts,
		breakdowns: breakdowns,
		resolver:   NewResolver(concepts),
		calendars:  calendars,
		engine:     engine,
		now:        time.Now,
	}
}

func (s *Service) today() time.Time {
	return calendar.Truncate(s.now())
}

// ========== PREVIEW ==========

func (s *Service) PreviewSingle(ctx context.Context, req payroll.PreviewSingleRequest) (payroll.Breakdown, error) {
	if err := req.Validate(); err != nil {
		return payroll.Breakdown{}, err
	}
	period, err := payroll.ParsePeriod(req.Period)
	if err != nil {
		return payroll.Breakdown{}, err
	}

	c, err := s.contracts.GetByID(ctx, req.ContractID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return payroll.Breakdown{}, apperror.Detailf(payroll.ErrNoEligibleContract, "contract %s does not exist", req.ContractID)
		}
		return payroll.Breakdown{}, err
	}
	if !c.ActiveDuring(period.Start(), period.End()) {
		return payroll.Breakdown{}, apperror.Detailf(payroll.ErrNoEligibleContract,
			"contract %s is not active in %s", c.ID, period)
	}
	return s.compute(ctx, c, period, payroll.OriginManual)
}

// PreviewBatch computes every dependent contract active in the period that has
// no breakdown yet, in the order the repository lists them. A contract that
// fails to compute is logged and left out; its error is joined into the
// returned error alongside the healthy breakdowns. The result is empty, never
// nil, when nothing is pending.
func (s *Service) PreviewBatch(ctx context.Context, req payroll.PreviewBatchRequest) ([]payroll.Breakdown, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	period, err := payroll.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	eligible, err := s.eligible(ctx, period)
	if err != nil {
		return nil, err
	}

	computed := make([]payroll.Breakdown, len(eligible))
	failed := make([]error, len(eligible))
	var g errgroup.Group
	g.SetLimit(batchWorkers)
	for i, c := range eligible {
		i, c := i, c
		g.Go(func() error {
			b, err := s.compute(ctx, c, period, payroll.OriginBatch)
			if err != nil {
				slog.Error("failed to compute payroll breakdown",
					"contract_id", c.ID,
					"period", period.String(),
					"error", err,
				)
				failed[i] = fmt.Errorf("failed to compute contract %s: %w", c.ID, err)
				return nil
			}
			computed[i] = b
			return nil
		})
	}
	_ = g.Wait()

	out := make([]payroll.Breakdown, 0, len(eligible))
	for i := range eligible {
		if failed[i] == nil {
			out = append(out, computed[i])
		}
	}
	return out, errors.Join(failed...)
}

func (s *Service) eligible(ctx context.Context, period payroll.Period) ([]contract.Contract, error) {
	active, err := s.contracts.ListActiveBetween(ctx, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to list active contracts: %w", err)
	}
	liquidated, err := s.breakdowns.LiquidatedContractIDs(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list liquidated contracts: %w", err)
	}

	var eligible []contract.Contract
	for _, c := range active {
		if c.Category() != contract.CategoryDependent || liquidated[c.ID] {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, nil
}

func (s *Service) compute(ctx context.Context, c contract.Contract, period payroll.Period, origin payroll.Origin) (payroll.Breakdown, error) {
	concepts, err := s.resolver.Resolve(ctx, c.ID)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	requests, err := s.requests.ListByContract(ctx, c.ID, nil)
	if err != nil {
		return payroll.Breakdown{}, fmt.Errorf("failed to list contract requests: %w", err)
	}
	cal, err := s.calendars.Load(ctx, period.Start(), period.End())
	if err != nil {
		return payroll.Breakdown{}, err
	}

	return s.run(Input{
		Contract: c,
		Period:   period,
		Concepts: concepts,
		Requests: requests,
		Calendar: cal,
		Origin:   origin,
	})
}

// run turns an engine panic into a computation error for the one contract.
func (s *Service) run(in Input) (b payroll.Breakdown, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("payroll computation panicked", "contract_id", in.Contract.ID, "period", in.Period.String(), "panic", p)
			err = apperror.Computation(
				fmt.Sprintf("payroll computation failed for contract %s", in.Contract.ID),
				fmt.Errorf("%v", p),
			)
		}
	}()
	return s.engine.Compute(in), nil
}

// ========== COMMIT ==========

// Commit persists each breakdown in its own transaction, re-checking that the
// (contract, period) pair is still free right before the insert.
func (s *Service) Commit(ctx context.Context, breakdowns []payroll.Breakdown, mode CommitMode) (CommitResult, error) {
	result := CommitResult{Created: make([]payroll.Breakdown, 0, len(breakdowns))}
	var errs []error

	for _, b := range breakdowns {
		saved, err := s.commitOne(ctx, b, mode)
		if err == nil {
			result.Created = append(result.Created, saved)
			continue
		}
		if mode == CommitSingle {
			return result, err
		}
		if errors.Is(err, payroll.ErrBreakdownAlreadyExists) {
			slog.Info("payroll breakdown already exists, skipping",
				"contract_id", b.ContractID,
				"period", b.Period.String(),
			)
			result.Skipped++
			continue
		}
		slog.Error("failed to commit payroll breakdown",
			"contract_id", b.ContractID,
			"period", b.Period.String(),
			"error", err,
		)
		errs = append(errs, fmt.Errorf("contract %s: %w", b.ContractID, err))
	}
	return result, errors.Join(errs...)
}

func (s *Service) commitOne(ctx context.Context, b payroll.Breakdown, mode CommitMode) (payroll.Breakdown, error) {
	var saved payroll.Breakdown
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.breakdowns.Exists(ctx, b.ContractID, b.Period)
		if err != nil {
			return fmt.Errorf("failed to check existing breakdown: %w", err)
		}
		if exists {
			return apperror.Detailf(payroll.ErrBreakdownAlreadyExists,
				"contract %s already has a breakdown for %s", b.ContractID, b.Period)
		}

		b.Status = payroll.StatusGenerated
		b.Origin = payroll.OriginManual
		if mode == CommitBatch {
			b.Origin = payroll.OriginBatch
		}
		saved, err = s.breakdowns.Create(ctx, b)
		return err
	})
	return saved, err
}

// GenerateSingle recomputes one contract server-side and persists it.
func (s *Service) GenerateSingle(ctx context.Context, req payroll.PreviewSingleRequest) (payroll.Breakdown, error) {
	b, err := s.PreviewSingle(ctx, req)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	result, err := s.Commit(ctx, []payroll.Breakdown{b}, CommitSingle)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	return result.Created[0], nil
}

// GenerateBatch recomputes and persists every pending contract of the period.
// Contracts that fail to compute or commit do not stop the others; their
// errors come back joined next to the result.
func (s *Service) GenerateBatch(ctx context.Context, req payroll.PreviewBatchRequest) (CommitResult, error) {
	breakdowns, computeErr := s.PreviewBatch(ctx, req)
	if computeErr != nil && len(breakdowns) == 0 {
		return CommitResult{Created: []payroll.Breakdown{}}, computeErr
	}
	result, err := s.Commit(ctx, breakdowns, CommitBatch)
	return result, errors.Join(computeErr, err)
}

// RunFinalSettlement liquidates the period containing date for a contract that
// has just ended. A period that is already liquidated is left untouched.
func (s *Service) RunFinalSettlement(ctx context.Context, contractID string, date time.Time) error {
	period := payroll.PeriodOf(date)
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	exists, err := s.breakdowns.Exists(ctx, c.ID, period)
	if err != nil {
		return fmt.Errorf("failed to check existing breakdown: %w", err)
	}
	if exists {
		slog.Warn("final settlement skipped, period already liquidated",
			"contract_id", c.ID,
			"period", period.String(),
		)
		return nil
	}

	b, err := s.compute(ctx, c, period, payroll.OriginManual)
	if err != nil {
		return err
	}
	if _, err := s.Commit(ctx, []payroll.Breakdown{b}, CommitSingle); err != nil {
		return err
	}
	slog.Info("final settlement generated", "contract_id", c.ID, "period", period.String(), "net", b.TotalNet.String())
	return nil
}

// ========== RECORDS ==========

func (s *Service) List(ctx context.Context, filter payroll.BreakdownFilter) ([]payroll.Breakdown, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.breakdowns.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (payroll.Breakdown, error) {
	return s.breakdowns.GetByID(ctx, id)
}

// UpdateStatus advances a breakdown one step along pending -> generated -> paid.
func (s *Service) UpdateStatus(ctx context.Context, req payroll.UpdateStatusRequest) (payroll.Breakdown, error) {
	if err := req.Validate(); err != nil {
		return payroll.Breakdown{}, err
	}
	to, _ := payroll.ParseStatus(req.Status)

	var updated payroll.Breakdown
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.breakdowns.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !b.Status.CanAdvance(to) {
			return apperror.Detailf(payroll.ErrInvalidStatusTransition,
				"payroll breakdown cannot move from %s to %s", b.Status, to)
		}

		var paidAt *time.Time
		if to == payroll.StatusPaid {
			d := s.today()
			if req.PaidAt != nil {
				d, _ = calendar.ParseDate(*req.PaidAt)
			}
			paidAt = &d
		}
		if err := s.breakdowns.UpdateStatus(ctx, b.ID, to, paidAt); err != nil {
			return fmt.Errorf("failed to update breakdown status: %w", err)
		}

		b.Status = to
		b.PaidAt = paidAt
		updated = b
		return nil
	})
	if err != nil {
		return payroll.Breakdown{}, err
	}
	slog.Info("payroll breakdown status changed", "breakdown_id", updated.ID, "status", updated.Status)
	return updated, nil
}
