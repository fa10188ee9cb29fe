package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// CouponServiceDeps wires the coupon service.
type CouponServiceDeps struct {
	Repo   repositories.CouponRepository
	Clock  Clock
	Logger Logger
}

type couponService struct {
	repo   repositories.CouponRepository
	clock  Clock
	logger Logger
}

// NewCouponService validates deps and returns the coupon service. The
// returned value also serves cart and checkout as the coupon resolver.
func NewCouponService(deps CouponServiceDeps) (*couponService, error) {
	if deps.Repo == nil {
		return nil, errors.New("coupon service: repo is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &couponService{repo: deps.Repo, clock: deps.Clock, logger: deps.Logger}, nil
}

// Resolve looks a coupon up by code and checks it against the subtotal.
// It returns the coupon, the discount it grants, and whether it waives
// shipping.
func (s *couponService) Resolve(ctx context.Context, code string, subtotal domain.Money) (domain.Coupon, domain.Money, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Coupon{}, 0, false, fmt.Errorf("%w: coupon code is required", ErrInvalidInput)
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, 0, false, translateRepoError(err, ErrCouponNotFound)
	}
	if err := s.Check(coupon, subtotal); err != nil {
		return domain.Coupon{}, 0, false, err
	}
	discount, waive := Discount(coupon, subtotal)
	return coupon, discount, waive, nil
}

// Check validates a coupon against the clock and a subtotal without
// resolving its discount.
func (s *couponService) Check(coupon domain.Coupon, subtotal domain.Money) error {
	now := s.clock()
	switch {
	case !coupon.Active:
		return ErrCouponInactive
	case now.Before(coupon.StartsAt):
		return ErrCouponNotStarted
	case !coupon.WithinWindow(now):
		return ErrCouponExpired
	case coupon.Exhausted():
		return ErrCouponExhausted
	}
	if coupon.MinOrderAmount != nil && subtotal < *coupon.MinOrderAmount {
		return &MinimumNotMetError{Code: coupon.Code, Required: *coupon.MinOrderAmount, Subtotal: subtotal}
	}
	return nil
}

// Discount resolves the amount a coupon takes off a subtotal and whether it
// waives shipping. Percentage discounts truncate toward zero; fixed amounts
// clamp to the subtotal.
func Discount(coupon domain.Coupon, subtotal domain.Money) (domain.Money, bool) {
	switch coupon.Kind {
	case domain.CouponPercentage:
		return subtotal * coupon.Value / 100, false
	case domain.CouponFixedAmount:
		if coupon.Value > subtotal {
			return subtotal, false
		}
		return coupon.Value, false
	case domain.CouponFreeShipping:
		return 0, true
	}
	return 0, false
}

func (s *couponService) ListCoupons(ctx context.Context, filter repositories.ListFilter) (repositories.Page[domain.Coupon], error) {
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return repositories.Page[domain.Coupon]{}, translateRepoError(err, ErrCouponNotFound)
	}
	return page, nil
}

func (s *couponService) CreateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error) {
	coupon, err := s.buildCoupon(uuid.New(), cmd)
	if err != nil {
		return domain.Coupon{}, err
	}
	coupon.CreatedAt = s.clock()
	coupon.UpdatedAt = coupon.CreatedAt
	if _, err := s.repo.Insert(ctx, coupon); err != nil {
		var re repositories.RepositoryError
		if errors.As(err, &re) && re.IsConflict() {
			return domain.Coupon{}, ErrCouponCodeTaken
		}
		return domain.Coupon{}, translateRepoError(err, ErrCouponNotFound)
	}
	s.logger(ctx, "coupon.created", map[string]any{"coupon_id": coupon.ID.String(), "code": coupon.Code})
	return coupon, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, couponID uuid.UUID, cmd UpsertCouponCommand) (domain.Coupon, error) {
	existing, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		return domain.Coupon{}, translateRepoError(err, ErrCouponNotFound)
	}
	coupon, err := s.buildCoupon(couponID, cmd)
	if err != nil {
		return domain.Coupon{}, err
	}
	coupon.UsedCount = existing.UsedCount
	coupon.CreatedAt = existing.CreatedAt
	coupon.UpdatedAt = s.clock()
	if _, err := s.repo.Update(ctx, coupon); err != nil {
		var re repositories.RepositoryError
		if errors.As(err, &re) && re.IsConflict() {
			return domain.Coupon{}, ErrCouponCodeTaken
		}
		return domain.Coupon{}, translateRepoError(err, ErrCouponNotFound)
	}
	return coupon, nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, couponID uuid.UUID) error {
	if err := s.repo.Delete(ctx, couponID); err != nil {
		return translateRepoError(err, ErrCouponNotFound)
	}
	s.logger(ctx, "coupon.deleted", map[string]any{"coupon_id": couponID.String()})
	return nil
}

func (s *couponService) buildCoupon(id uuid.UUID, cmd UpsertCouponCommand) (domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if code == "" {
		return domain.Coupon{}, fmt.Errorf("%w: coupon code is required", ErrInvalidInput)
	}
	kind, ok := domain.ParseCouponKind(cmd.Kind)
	if !ok {
		return domain.Coupon{}, fmt.Errorf("%w: unknown coupon kind %q", ErrInvalidInput, cmd.Kind)
	}
	switch kind {
	case domain.CouponPercentage:
		if cmd.Value < 1 || cmd.Value > 100 {
			return domain.Coupon{}, fmt.Errorf("%w: percentage value must be within 1..100", ErrInvalidInput)
		}
	case domain.CouponFixedAmount:
		if cmd.Value <= 0 {
			return domain.Coupon{}, fmt.Errorf("%w: fixed amount must be positive", ErrInvalidInput)
		}
	case domain.CouponFreeShipping:
		cmd.Value = 0
	}
	if cmd.MinOrderAmount != nil && *cmd.MinOrderAmount < 0 {
		return domain.Coupon{}, fmt.Errorf("%w: minimum order amount must not be negative", ErrInvalidInput)
	}
	if cmd.MaxUses != nil && *cmd.MaxUses < 1 {
		return domain.Coupon{}, fmt.Errorf("%w: max uses must be positive", ErrInvalidInput)
	}
	if !cmd.ExpiresAt.IsZero() && !cmd.ExpiresAt.After(cmd.StartsAt) {
		return domain.Coupon{}, fmt.Errorf("%w: expiry must be after start", ErrInvalidInput)
	}
	return domain.Coupon{
		ID:             id,
		Code:           code,
		Kind:           kind,
		Value:          cmd.Value,
		MinOrderAmount: cmd.MinOrderAmount,
		StartsAt:       cmd.StartsAt,
		ExpiresAt:      cmd.ExpiresAt,
		MaxUses:        cmd.MaxUses,
		Active:         cmd.Active,
	}, nil
}
