package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// AddressServiceDeps wires the address service.
type AddressServiceDeps struct {
	Repo   repositories.AddressRepository
	Logger Logger
}

type addressService struct {
	repo   repositories.AddressRepository
	logger Logger
}

// NewAddressService validates deps and returns the address service.
func NewAddressService(deps AddressServiceDeps) (*addressService, error) {
	if deps.Repo == nil {
		return nil, errors.New("address service: repo is required")
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &addressService{repo: deps.Repo, logger: deps.Logger}, nil
}

func (s *addressService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	addresses, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err, ErrAddressNotFound)
	}
	return addresses, nil
}

func (s *addressService) CreateAddress(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error) {
	address, err := buildAddress(uuid.New(), cmd)
	if err != nil {
		return domain.Address{}, err
	}
	created, err := s.repo.Insert(ctx, address)
	if err != nil {
		return domain.Address{}, translateRepoError(err, ErrAddressNotFound)
	}
	s.logger(ctx, "address.created", map[string]any{"address_id": created.ID.String()})
	return created, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, addressID uuid.UUID, cmd UpsertAddressCommand) (domain.Address, error) {
	existing, err := s.repo.FindForOwner(ctx, addressID, cmd.UserID)
	if err != nil {
		return domain.Address{}, translateRepoError(err, ErrAddressNotFound)
	}
	address, err := buildAddress(existing.ID, cmd)
	if err != nil {
		return domain.Address{}, err
	}
	address.CreatedAt = existing.CreatedAt
	updated, err := s.repo.Update(ctx, address)
	if err != nil {
		return domain.Address{}, translateRepoError(err, ErrAddressNotFound)
	}
	return updated, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, userID string, addressID uuid.UUID) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, addressID, userID); err != nil {
		return translateRepoError(err, ErrAddressNotFound)
	}
	return nil
}

func buildAddress(id uuid.UUID, cmd UpsertAddressCommand) (domain.Address, error) {
	if cmd.UserID == "" {
		return domain.Address{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	recipient := strings.TrimSpace(cmd.Recipient)
	line1 := strings.TrimSpace(cmd.Line1)
	city := strings.TrimSpace(cmd.City)
	if recipient == "" || line1 == "" || city == "" {
		return domain.Address{}, fmt.Errorf("%w: recipient, line1 and city are required", ErrInvalidInput)
	}
	country := strings.ToUpper(strings.TrimSpace(cmd.Country))
	if country == "" {
		country = "NG"
	}
	return domain.Address{
		ID:        id,
		UserID:    cmd.UserID,
		Label:     strings.TrimSpace(cmd.Label),
		Recipient: recipient,
		Phone:     strings.TrimSpace(cmd.Phone),
		Line1:     line1,
		Line2:     strings.TrimSpace(cmd.Line2),
		City:      city,
		State:     strings.TrimSpace(cmd.State),
		Country:   country,
		IsDefault: cmd.IsDefault,
	}, nil
}
