package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/repositories"
)

// CatalogServiceDeps wires the catalog service.
type CatalogServiceDeps struct {
	Repo   repositories.CatalogRepository
	Logger Logger
}

type catalogService struct {
	repo   repositories.CatalogRepository
	logger Logger
}

// NewCatalogService validates deps and returns the catalog service.
func NewCatalogService(deps CatalogServiceDeps) (*catalogService, error) {
	if deps.Repo == nil {
		return nil, errors.New("catalog service: repo is required")
	}
	if deps.Logger == nil {
		deps.Logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{repo: deps.Repo, logger: deps.Logger}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repositories.ProductListFilter) (repositories.Page[ProductView], error) {
	page, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return repositories.Page[ProductView]{}, translateRepoError(err, ErrProductNotFound)
	}
	views := make([]ProductView, 0, len(page.Items))
	for _, product := range page.Items {
		view, err := s.withVariants(ctx, product)
		if err != nil {
			return repositories.Page[ProductView]{}, err
		}
		views = append(views, view)
	}
	return repositories.Page[ProductView]{Items: views, Total: page.Total}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (ProductView, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return ProductView{}, translateRepoError(err, ErrProductNotFound)
	}
	return s.withVariants(ctx, product)
}

// AdjustStock applies a signed correction to a variant's stock level.
func (s *catalogService) AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (domain.ProductVariant, error) {
	if delta == 0 {
		return domain.ProductVariant{}, fmt.Errorf("%w: delta must not be zero", ErrInvalidInput)
	}
	variant, err := s.repo.AdjustStock(ctx, variantID, delta)
	if err != nil {
		var re repositories.RepositoryError
		if errors.As(err, &re) && re.IsNotFound() && delta < 0 {
			// The conditional update matches nothing both for a missing
			// variant and for a delta that would push stock negative;
			// distinguish by re-reading.
			if current, ferr := s.repo.FindVariant(ctx, variantID); ferr == nil {
				return domain.ProductVariant{}, &InsufficientStockError{
					VariantID: variantID,
					Requested: -delta,
					Available: current.StockQuantity,
				}
			}
		}
		return domain.ProductVariant{}, translateRepoError(err, ErrVariantNotFound)
	}
	s.logger(ctx, "catalog.stock_adjusted", map[string]any{
		"variant_id": variantID.String(),
		"delta":      delta,
		"stock":      variant.StockQuantity,
	})
	return variant, nil
}

func (s *catalogService) withVariants(ctx context.Context, product domain.Product) (ProductView, error) {
	variants, err := s.repo.VariantsByProduct(ctx, product.ID)
	if err != nil {
		return ProductView{}, translateRepoError(err, ErrProductNotFound)
	}
	views := make([]VariantView, 0, len(variants))
	for _, v := range variants {
		views = append(views, VariantView{ProductVariant: v, UnitPrice: v.UnitPrice(product.BasePrice)})
	}
	return ProductView{Product: product, Variants: views}, nil
}
