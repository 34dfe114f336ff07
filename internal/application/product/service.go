package product

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nitrmart-api/internal/application/authz"
	"github.com/nitrmart-api/internal/application/media"
	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldNegotiable  = "negotiable"
	fieldCategory    = "category"
	fieldIsSold      = "is_sold"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLength  = 100
)

const msgNotOwner = "You can only edit or delete your own products."

type Service interface {
	Create(ctx context.Context, actor domain.Actor, in domain.ProductInput, images []media.File) (*domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	// Update applies in. A non-empty images slice replaces every existing image.
	Update(ctx context.Context, actor domain.Actor, productID string, in domain.ProductInput, images []media.File) (*domain.Product, error)
	Delete(ctx context.Context, actor domain.Actor, productID string) error
	Categories() []string
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	Delete(ctx context.Context, productID string) error
	QueryFeed(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error)
}

type imageStore interface {
	Put(ctx context.Context, img *domain.ProductImage) error
	ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error)
	ListByProducts(ctx context.Context, productIDs []string) (map[string][]domain.ProductImage, error)
	DeleteByProduct(ctx context.Context, productID string) error
}

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo   productStore
	images imageStore
	media  media.Service
	users  userLookup
	now    func() time.Time
}

type ServiceDeps struct {
	ProductRepo productStore
	ImageRepo   imageStore
	Media       media.Service
	UserRepo    userLookup
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:   deps.ProductRepo,
		images: deps.ImageRepo,
		media:  deps.Media,
		users:  deps.UserRepo,
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, in domain.ProductInput, files []media.File) (*domain.Product, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("authentication required: %w", domain.ErrUnauthorized)
	}
	if err := validateInput(in, true); err != nil {
		return nil, err
	}
	// Validate sniffs every file, so a bad upload is rejected before any write.
	if err := s.media.Validate(files); err != nil {
		return nil, err
	}
	seller, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	// Whole seconds keep the RFC3339 sort key lexically ordered.
	now := s.now().UTC().Truncate(time.Second)
	p := &domain.Product{
		ProductID:   id.New(),
		Title:       strings.TrimSpace(*in.Title),
		Description: strings.TrimSpace(*in.Description),
		Price:       *in.Price,
		Category:    *in.Category,
		SellerID:    seller.UserID,
		SellerName:  seller.Username,
		PostedAt:    now,
		UpdatedAt:   now,
	}
	if in.Negotiable != nil {
		p.Negotiable = *in.Negotiable
	}
	if in.IsSold != nil {
		p.IsSold = *in.IsSold
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	imgs, err := s.storeImages(ctx, p.ProductID, files)
	if err != nil {
		return nil, err
	}
	p.Images = imgs
	return p, nil
}

func (s *service) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	if f.Category != "" && !domain.ValidCategory(f.Category) {
		return nil, "", domain.ValidationErrors{fieldCategory: invalidChoice(f.Category)}
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	products, next, err := s.repo.QueryFeed(ctx, f)
	if err != nil {
		return nil, "", err
	}
	if len(products) == 0 {
		return products, next, nil
	}
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ProductID
	}
	byProduct, err := s.images.ListByProducts(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	for i := range products {
		products[i].Images = byProduct[products[i].ProductID]
		if products[i].Images == nil {
			products[i].Images = []domain.ProductImage{}
		}
	}
	return products, next, nil
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	imgs, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.Images = imgs
	return p, nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, productID string, in domain.ProductInput, files []media.File) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, p, msgNotOwner); err != nil {
		return nil, err
	}
	if err := validateInput(in, false); err != nil {
		return nil, err
	}
	if err := s.media.Validate(files); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates[fieldTitle] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates[fieldDescription] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		updates[fieldPrice] = *in.Price
	}
	if in.Negotiable != nil {
		updates[fieldNegotiable] = *in.Negotiable
	}
	if in.Category != nil {
		updates[fieldCategory] = *in.Category
	}
	if in.IsSold != nil {
		updates[fieldIsSold] = *in.IsSold
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, productID, updates); err != nil {
			return nil, err
		}
	}

	if len(files) > 0 {
		// Old images go first; a failure after this point leaves the listing
		// with fewer images and is not rolled back.
		old, err := s.images.ListByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := s.images.DeleteByProduct(ctx, productID); err != nil {
			return nil, err
		}
		s.media.Remove(ctx, old)
		if _, err := s.storeImages(ctx, productID, files); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, productID string) error {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := authz.Require(actor, p, msgNotOwner); err != nil {
		return err
	}
	imgs, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	if err := s.images.DeleteByProduct(ctx, productID); err != nil {
		slog.Warn("failed to delete image rows of deleted product", "product_id", productID, "err", err)
	}
	s.media.Remove(ctx, imgs)
	return nil
}

func (s *service) Categories() []string {
	out := make([]string, len(domain.Categories))
	copy(out, domain.Categories)
	return out
}

func (s *service) storeImages(ctx context.Context, productID string, files []media.File) ([]domain.ProductImage, error) {
	imgs := make([]domain.ProductImage, 0, len(files))
	for _, f := range files {
		img, err := s.media.Store(ctx, productID, f)
		if err != nil {
			return nil, err
		}
		if err := s.images.Put(ctx, img); err != nil {
			return nil, err
		}
		imgs = append(imgs, *img)
	}
	return imgs, nil
}

// validateInput checks the writable fields. On create every required field
// must be present; on update only supplied fields are checked.
func validateInput(in domain.ProductInput, create bool) error {
	errs := domain.ValidationErrors{}
	required := func(field string, present bool) bool {
		if !present && create {
			errs[field] = "This field is required."
		}
		return present
	}

	if required(fieldTitle, in.Title != nil) {
		switch t := strings.TrimSpace(*in.Title); {
		case t == "":
			errs[fieldTitle] = "This field may not be blank."
		case len([]rune(t)) > maxTitleLength:
			errs[fieldTitle] = fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength)
		}
	}
	if required(fieldDescription, in.Description != nil) && strings.TrimSpace(*in.Description) == "" {
		errs[fieldDescription] = "This field may not be blank."
	}
	if required(fieldPrice, in.Price != nil) {
		switch {
		case *in.Price < 0:
			errs[fieldPrice] = "Price cannot be negative."
		case *in.Price > domain.MaxPrice:
			errs[fieldPrice] = "Ensure that there are no more than 10 digits in total."
		}
	}
	if required(fieldCategory, in.Category != nil) && !domain.ValidCategory(*in.Category) {
		errs[fieldCategory] = invalidChoice(*in.Category)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func invalidChoice(v string) string {
	return fmt.Sprintf("%q is not a valid choice.", v)
}
