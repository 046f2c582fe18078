package usecase

import (
	"context"
	"errors"
	"fmt"

	"catalog-system/internal/converter"
	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/domain/entity"
	"catalog-system/internal/domain/repository"
	"catalog-system/internal/service"
	"catalog-system/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPayload marks an update whose body could not be decoded.
	ErrInvalidPayload = errors.New("invalid request body")
)

// ProductUsecase runs the product workflow. Create, Update and Delete
// report a failed notification as an error wrapping
// service.ErrNotificationFailed; the mutation is already committed at that
// point and the returned product is valid. Update takes a nil request when
// the body could not be decoded; that is reported only once the product
// is known to exist.
type ProductUsecase interface {
	GetAll(ctx context.Context) ([]dto.ProductResponse, error)
	GetBySKU(ctx context.Context, sku uuid.UUID) (*dto.ProductResponse, error)
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, actor entity.Actor, sku uuid.UUID, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, actor entity.Actor, sku uuid.UUID) error
}

type productUsecase struct {
	log          *logrus.Logger
	productRepo  repository.ProductRepository
	notification service.NotificationService
	validator    *validator.CustomValidator
}

func NewProductUsecase(
	log *logrus.Logger,
	productRepo repository.ProductRepository,
	notification service.NotificationService,
	validator *validator.CustomValidator,
) ProductUsecase {
	return &productUsecase{
		log:          log,
		productRepo:  productRepo,
		notification: notification,
		validator:    validator,
	}
}

func (u *productUsecase) GetAll(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list products: %+v", err)
		return nil, err
	}

	return converter.ProductsToResponses(products), nil
}

// GetBySKU counts every successful read as a view. The increment is a plain
// read-modify-write; concurrent reads of one product may lose updates.
func (u *productUsecase) GetBySKU(ctx context.Context, sku uuid.UUID) (*dto.ProductResponse, error) {
	product, err := u.findProduct(ctx, sku)
	if err != nil {
		return nil, err
	}

	product.Views++
	if err := u.productRepo.Save(ctx, product); err != nil {
		if errors.Is(err, repository.ErrRecordGone) {
			return nil, ErrProductNotFound
		}
		u.log.Warnf("Failed to record product view: %+v", err)
		return nil, err
	}

	return converter.ProductToResponse(product), nil
}

func (u *productUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:  req.Name,
		Price: *req.Price,
		Brand: req.Brand,
	}

	if err := u.productRepo.Save(ctx, product); err != nil {
		u.log.Warnf("Failed to create product: %+v", err)
		return nil, err
	}

	return converter.ProductToResponse(product), u.notify(ctx, actor, product, entity.ChangeActionCreate)
}

func (u *productUsecase) Update(ctx context.Context, actor entity.Actor, sku uuid.UUID, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := u.findProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrInvalidPayload
	}

	if err := u.validator.Check(req); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Price = *req.Price
	product.Brand = req.Brand

	if err := u.productRepo.Save(ctx, product); err != nil {
		if errors.Is(err, repository.ErrRecordGone) {
			return nil, ErrProductNotFound
		}
		u.log.Warnf("Failed to update product: %+v", err)
		return nil, err
	}

	return converter.ProductToResponse(product), u.notify(ctx, actor, product, entity.ChangeActionUpdate)
}

func (u *productUsecase) Delete(ctx context.Context, actor entity.Actor, sku uuid.UUID) error {
	product, err := u.findProduct(ctx, sku)
	if err != nil {
		return err
	}

	// Keep what the notification needs before the row is gone.
	deleted := *product

	if err := u.productRepo.Delete(ctx, product); err != nil {
		u.log.Warnf("Failed to delete product: %+v", err)
		return err
	}

	return u.notify(ctx, actor, &deleted, entity.ChangeActionDelete)
}

func (u *productUsecase) findProduct(ctx context.Context, sku uuid.UUID) (*entity.Product, error) {
	product, err := u.productRepo.FindByKey(ctx, sku)
	if err != nil {
		u.log.Warnf("Failed to find product: %+v", err)
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (u *productUsecase) notify(ctx context.Context, actor entity.Actor, product *entity.Product, action entity.ChangeAction) error {
	err := u.notification.Notify(ctx, product.SKU.String(), product.Name, actor.Email, action)
	if err != nil {
		return fmt.Errorf("product %s %s committed: %w", product.SKU, action, err)
	}
	return nil
}
