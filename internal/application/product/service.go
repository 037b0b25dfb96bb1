package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
	s3infra "github.com/go-referral-api/internal/infrastructure/s3"
	"github.com/go-referral-api/internal/pkg/id"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldStock       = "stock"
	fieldEnable      = "enable"

	imageURLTTL = time.Hour
)

type Service interface {
	// List returns the catalogue. The shop sees enabled products only.
	List(ctx context.Context, enabledOnly bool) ([]domain.Product, error)
	// Get hides disabled products unless includeDisabled is set.
	Get(ctx context.Context, productID string, includeDisabled bool) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, productID string, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
	UploadImage(ctx context.Context, productID, filename string, r io.Reader) (*domain.Product, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	List(ctx context.Context, enabledOnly bool) ([]domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SetImageKey(ctx context.Context, productID, key string) error
	SoftDelete(ctx context.Context, productID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo    productStore
	objects objectStore
	now     func() time.Time
}

type ServiceDeps struct {
	ProductRepo productStore
	Objects     objectStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.ProductRepo, objects: deps.Objects, now: now}
}

func (s *service) List(ctx context.Context, enabledOnly bool) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.attachImageURL(ctx, &products[i])
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, productID string, includeDisabled bool) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Enable && !includeDisabled {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	s.attachImageURL(ctx, p)
	return p, nil
}

func (s *service) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &domain.Product{
		ProductID:   id.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Enable:      in.Enable == nil || *in.Enable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, productID string, in domain.ProductInput) (*domain.Product, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldName:        strings.TrimSpace(in.Name),
		fieldDescription: in.Description,
		fieldPrice:       in.Price,
		fieldStock:       in.Stock,
	}
	if in.Enable != nil {
		updates[fieldEnable] = *in.Enable
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, productID, true)
}

func checkInput(in domain.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("name is required: %w", domain.ErrBadRequest)
	case in.Price <= 0:
		return fmt.Errorf("price must be positive: %w", domain.ErrBadRequest)
	case in.Stock < 0:
		return fmt.Errorf("stock cannot be negative: %w", domain.ErrBadRequest)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, productID string) error {
	return s.repo.SoftDelete(ctx, productID)
}

func (s *service) UploadImage(ctx context.Context, productID, filename string, r io.Reader) (*domain.Product, error) {
	contentType := s3infra.ImageContentType(filename)
	if contentType == "" {
		return nil, fmt.Errorf("unsupported image type: %w", domain.ErrBadRequest)
	}
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := s3infra.ProductImageKey(productID, id.New(), filename)
	if err := s.objects.Upload(ctx, key, r, contentType); err != nil {
		return nil, err
	}
	if err := s.repo.SetImageKey(ctx, productID, key); err != nil {
		return nil, err
	}
	if p.ImageKey != "" {
		if err := s.objects.Delete(ctx, p.ImageKey); err != nil {
			slog.Warn("could not delete replaced product image", "product_id", productID, "key", p.ImageKey, "err", err)
		}
	}
	p.ImageKey = key
	s.attachImageURL(ctx, p)
	return p, nil
}

func (s *service) attachImageURL(ctx context.Context, p *domain.Product) {
	if p.ImageKey == "" {
		return
	}
	url, err := s.objects.PresignedURL(ctx, p.ImageKey, imageURLTTL)
	if err != nil {
		slog.Warn("could not presign product image", "product_id", p.ProductID, "err", err)
		return
	}
	p.ImageURL = url
}
