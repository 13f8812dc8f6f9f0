package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"opendfood/logger"
	"opendfood/order-svc/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxSlugAttempts = 5
	// maxSlugLength is the DNS label limit; the slug doubles as subdomain.
	maxSlugLength = 63
)

type RestaurantService struct {
	repo     TenantRepository
	qr       QRGenerator
	links    Links
	reserved map[string]bool
}

type RestaurantOption func(*RestaurantService)

// WithReservedSubdomains keeps labels the tenant resolver ignores, such as
// "www", from being handed out as a subdomain.
func WithReservedSubdomains(labels []string) RestaurantOption {
	return func(s *RestaurantService) {
		for _, l := range labels {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				s.reserved[l] = true
			}
		}
	}
}

func NewRestaurantService(repo TenantRepository, qr QRGenerator, links Links, opts ...RestaurantOption) *RestaurantService {
	s := &RestaurantService{repo: repo, qr: qr, links: links, reserved: map[string]bool{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateRestaurant(rest *domain.Restaurant) error {
	rest.Name = strings.TrimSpace(rest.Name)
	if rest.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if rest.TaxRate != nil && (rest.TaxRate.IsNegative() || rest.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return fmt.Errorf("%w: tax_rate must be in [0, 1)", domain.ErrInvalidInput)
	}
	return nil
}

// Create derives a unique slug from the name (name, name-1, name-2, ...) and
// uses it as the subdomain. The restaurant QR code is rendered afterwards; a
// rendering failure does not undo the creation.
func (s *RestaurantService) Create(ctx context.Context, rest *domain.Restaurant) error {
	if err := validateRestaurant(rest); err != nil {
		return err
	}
	base := domain.Slugify(rest.Name)
	if base == "" {
		return fmt.Errorf("%w: name must contain letters or digits", domain.ErrInvalidInput)
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.nextSlug(ctx, base)
		if err != nil {
			return err
		}
		rest.Slug = slug
		rest.Subdomain = slug

		err = s.repo.CreateRestaurant(ctx, rest)
		if errors.Is(err, domain.ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return err
		}

		s.renderQR(ctx, rest)
		return nil
	}
	return domain.ErrDuplicateSlug
}

func (s *RestaurantService) nextSlug(ctx context.Context, base string) (string, error) {
	slug := truncateSlug(base, "")
	for i := 1; ; i++ {
		if !s.reserved[slug] {
			taken, err := s.repo.SlugTaken(ctx, slug)
			if err != nil {
				return "", err
			}
			if !taken {
				return slug, nil
			}
		}
		slug = truncateSlug(base, fmt.Sprintf("-%d", i))
	}
}

// truncateSlug shortens base so base+suffix fits in one DNS label. Slugs are
// ASCII, so byte slicing is safe.
func truncateSlug(base, suffix string) string {
	if limit := maxSlugLength - len(suffix); len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + suffix
}

func (s *RestaurantService) renderQR(ctx context.Context, rest *domain.Restaurant) []byte {
	if s.qr == nil {
		return nil
	}
	qr, err := s.qr.Encode(s.links.Restaurant(rest.Subdomain))
	if err == nil {
		err = s.repo.SaveRestaurantQR(ctx, rest.ID, qr)
	}
	if err != nil {
		logger.FromContext(ctx).Warn("restaurant qr code not saved", zap.Int("restaurant_id", rest.ID), zap.Error(err))
		return nil
	}
	return qr
}

func (s *RestaurantService) Get(ctx context.Context, id int) (*domain.Restaurant, error) {
	return s.repo.GetRestaurant(ctx, id)
}

func (s *RestaurantService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Restaurant, error) {
	return s.repo.ListRestaurantsByOwner(ctx, ownerID)
}

// Update changes the descriptive fields. Slug and subdomain stay as created.
func (s *RestaurantService) Update(ctx context.Context, rest *domain.Restaurant) error {
	if err := validateRestaurant(rest); err != nil {
		return err
	}
	return s.repo.UpdateRestaurant(ctx, rest)
}

func (s *RestaurantService) SetActive(ctx context.Context, id int, active bool) error {
	rows, err := s.repo.SetRestaurantActive(ctx, id, active)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *RestaurantService) QRCode(ctx context.Context, id int) ([]byte, error) {
	qr, err := s.repo.GetRestaurantQR(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(qr) > 0 {
		return qr, nil
	}

	rest, err := s.repo.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	if qr = s.renderQR(ctx, rest); qr == nil {
		return nil, domain.ErrNotFound
	}
	return qr, nil
}
