package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
	"github.com/top-magar/indigo-sub018/internal/repository"
)

var (
	// ErrTenantNotFound indicates the host resolved to no known tenant.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrInvalidHost indicates the Host header failed classification.
	ErrInvalidHost = errors.New("invalid host")
	// ErrInvalidName indicates the onboarding display name is unusable.
	ErrInvalidName = errors.New("invalid store name")
)

// maxSlugAttempts bounds collision suffixing during onboarding.
const maxSlugAttempts = 50

// TenantService resolves request hosts to tenants and onboards new stores.
type TenantService struct {
	tenants        port.TenantRepository
	events         port.EventPublisher
	logger         *zap.Logger
	platformDomain string
}

// NewTenantService wires the tenant service.
func NewTenantService(tenants port.TenantRepository, events port.EventPublisher, platformDomain string, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenants:        tenants,
		events:         events,
		logger:         logger,
		platformDomain: platformDomain,
	}
}

// HostResolution is the outcome of mapping a Host header to a tenant.
type HostResolution struct {
	Classification domain.HostClassification
	// Tenant is set when the classification resolved to a known tenant.
	Tenant *domain.Tenant
}

// ResolveHost classifies the Host header and, for tenant subdomains and
// custom domains, looks up the owning tenant.
func (s *TenantService) ResolveHost(ctx context.Context, host string) (HostResolution, error) {
	classification := domain.ClassifyHost(host, s.platformDomain)

	switch classification.Kind {
	case domain.HostKindInvalid:
		return HostResolution{Classification: classification}, fmt.Errorf("%w: %s", ErrInvalidHost, classification.Reason)

	case domain.HostKindPlatform:
		return HostResolution{Classification: classification}, nil

	case domain.HostKindTenantSubdomain:
		tenant, err := s.tenants.GetBySlug(ctx, classification.Slug)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return HostResolution{Classification: classification}, ErrTenantNotFound
			}
			return HostResolution{}, fmt.Errorf("lookup tenant by slug: %w", err)
		}
		return HostResolution{Classification: classification, Tenant: &tenant}, nil

	default:
		tenant, err := s.tenants.GetByCustomDomain(ctx, classification.Host)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return HostResolution{Classification: classification}, ErrTenantNotFound
			}
			return HostResolution{}, fmt.Errorf("lookup tenant by domain: %w", err)
		}
		return HostResolution{Classification: classification, Tenant: &tenant}, nil
	}
}

// Onboard creates a tenant from a display name. The slug is derived with
// domain.GenerateSlug; collisions with existing tenants get a numeric suffix.
// A tenant.created event is published after the row is committed.
func (s *TenantService) Onboard(ctx context.Context, name string) (domain.Tenant, error) {
	if name == "" {
		return domain.Tenant{}, ErrInvalidName
	}

	slug, err := s.availableSlug(ctx, domain.GenerateSlug(name))
	if err != nil {
		return domain.Tenant{}, err
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		Status:    domain.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tenants.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}

	event := domain.TenantCreatedEvent{
		TenantID:  tenant.ID,
		Slug:      tenant.Slug,
		Name:      tenant.Name,
		CreatedAt: tenant.CreatedAt,
	}
	if err := s.events.PublishTenantCreated(ctx, event); err != nil {
		// Onboarding already succeeded; event delivery is best effort.
		s.logger.Warn("publish tenant.created failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("tenant onboarded",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)

	return tenant, nil
}

func (s *TenantService) availableSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		exists, err := s.tenants.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug availability: %w", err)
		}
		if !exists {
			return candidate, nil
		}

		suffix := "-" + strconv.Itoa(attempt)
		trimmed := base
		if len(trimmed)+len(suffix) > domain.SlugMaxLength {
			trimmed = trimmed[:domain.SlugMaxLength-len(suffix)]
		}
		candidate = strings.TrimRight(trimmed, "-") + suffix
	}

	return "", fmt.Errorf("no available slug for %q", base)
}
