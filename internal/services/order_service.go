package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// OrderServiceDeps wires the order service.
type OrderServiceDeps struct {
	Store  repositories.Registry
	Clock  Clock
	Logger Logger
	// StrictTransitions enforces the lifecycle graph on admin updates.
	// When false an admin may force any known status; stock restoration on
	// entry into CANCELLED still applies.
	StrictTransitions bool
}

type orderService struct {
	store  repositories.Registry
	clock  Clock
	logger Logger
	strict bool
}

// NewOrderService validates deps and returns the order service.
func NewOrderService(deps OrderServiceDeps) (*orderService, error) {
	if deps.Store == nil {
		return nil, errors.New("order service: store is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &orderService{
		store:  deps.Store,
		clock:  deps.Clock,
		logger: deps.Logger,
		strict: deps.StrictTransitions,
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string, filter repositories.ListFilter) (repositories.Page[domain.Order], error) {
	if userID == "" {
		return repositories.Page[domain.Order]{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	page, err := s.store.Orders().List(ctx, repositories.OrderListFilter{ListFilter: filter, UserID: userID})
	if err != nil {
		return repositories.Page[domain.Order]{}, translateRepoError(err, ErrOrderNotFound)
	}
	return page, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (OrderView, error) {
	order, err := s.store.Orders().FindForOwner(ctx, orderID, userID)
	if err != nil {
		return OrderView{}, translateRepoError(err, ErrOrderNotFound)
	}
	items, err := s.store.Orders().Items(ctx, orderID)
	if err != nil {
		return OrderView{}, translateRepoError(err, ErrOrderNotFound)
	}
	return OrderView{Order: order, Items: items}, nil
}

// Cancel moves a PENDING or CONFIRMED order to CANCELLED and restores the
// reserved stock. Both happen in one transaction so a failure midway leaves
// neither applied.
func (s *orderService) Cancel(ctx context.Context, userID string, orderID uuid.UUID) (OrderView, error) {
	var view OrderView
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.store.Orders().FindForOwner(ctx, orderID, userID)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		if !order.Status.Cancellable() {
			return fmt.Errorf("%w: status %s", ErrOrderNotCancellable, order.Status)
		}
		items, err := s.store.Orders().Items(ctx, orderID)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		if err := s.restoreStock(ctx, items); err != nil {
			return err
		}
		if err := s.store.Orders().UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		order.Status = domain.OrderStatusCancelled
		order.UpdatedAt = s.clock()
		view = OrderView{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}
	s.logger(ctx, "order.cancelled", map[string]any{"order_id": orderID.String()})
	return view, nil
}

func (s *orderService) AdminListOrders(ctx context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error) {
	page, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return repositories.Page[domain.Order]{}, translateRepoError(err, ErrOrderNotFound)
	}
	return page, nil
}

// AdminUpdateStatus moves an order along its lifecycle. The transition graph
// is enforced when the service runs strict; entering CANCELLED restores
// stock regardless of mode.
func (s *orderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (OrderView, error) {
	target, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		return OrderView{}, fmt.Errorf("%w: %q", ErrOrderInvalidStatus, rawStatus)
	}
	var view OrderView
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.store.Orders().FindByID(ctx, orderID)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		if order.Status == target {
			return fmt.Errorf("%w: already %s", ErrOrderTransitionNotAllowed, target)
		}
		if s.strict && !order.Status.CanTransition(target) {
			return fmt.Errorf("%w: %s -> %s", ErrOrderTransitionNotAllowed, order.Status, target)
		}
		items, err := s.store.Orders().Items(ctx, orderID)
		if err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		if target == domain.OrderStatusCancelled {
			if err := s.restoreStock(ctx, items); err != nil {
				return err
			}
		}
		if err := s.store.Orders().UpdateStatus(ctx, orderID, target); err != nil {
			return translateRepoError(err, ErrOrderNotFound)
		}
		order.Status = target
		order.UpdatedAt = s.clock()
		view = OrderView{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}
	s.logger(ctx, "order.status_updated", map[string]any{"order_id": orderID.String(), "status": string(target)})
	return view, nil
}

func (s *orderService) restoreStock(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		if err := s.store.Catalog().RestoreStock(ctx, item.VariantID, item.Quantity); err != nil {
			return translateRepoError(err, ErrVariantNotFound)
		}
	}
	return nil
}
