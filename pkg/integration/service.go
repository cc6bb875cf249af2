package integration

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
)

const basePath = "/api/integrations"

// Doer is the slice of the request executor the accessors need.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

type Service struct {
	client Doer
}

func NewService(client Doer) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]Integration, error) {
	var out []Integration
	if err := s.client.Get(ctx, basePath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByOrigin asks the backend for the integration registered for origin and
// refuses to hand out an inactive one.
func (s *Service) GetByOrigin(ctx context.Context, origin string) (*Integration, error) {
	if origin == "" {
		return nil, apperror.New(apperror.Validation, "website origin is required")
	}

	var out Integration
	err := s.client.Get(ctx, basePath+"/"+url.PathEscape(origin), nil, &out)
	if apperror.IsCode(err, apperror.NotFound) {
		return nil, NotFoundError(origin)
	}
	if err != nil {
		return nil, err
	}
	if !out.IsActive {
		return nil, InactiveError(origin)
	}
	return &out, nil
}

func NotFoundError(origin string) *apperror.AppError {
	return apperror.New(apperror.NotFound, fmt.Sprintf("Integration not found for website origin: %s", origin))
}

func InactiveError(origin string) *apperror.AppError {
	return apperror.New(apperror.Inactive, fmt.Sprintf("Integration is not active for website origin: %s", origin))
}
