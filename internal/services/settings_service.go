package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"evspare/internal/models"
	"evspare/internal/repositories"
)

// SettingsService reads and updates store-wide settings.
type SettingsService struct {
	repo repositories.SettingsRepository
}

func NewSettingsService(repo repositories.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the saved settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.repo.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		d := models.DefaultStoreSettings()
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// TaxRate returns the current tax rate in percent.
func (s *SettingsService) TaxRate(ctx context.Context) (float64, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return settings.TaxRate, nil
}

// Update saves settings. The tax rate must be within 0 and 100 percent.
func (s *SettingsService) Update(ctx context.Context, settings *models.StoreSettings) (*models.StoreSettings, error) {
	if settings.TaxRate < 0 || settings.TaxRate > 100 {
		return nil, fmt.Errorf("%w: tax rate must be between 0 and 100", ErrValidation)
	}
	if strings.TrimSpace(settings.StoreName) == "" {
		return nil, fmt.Errorf("%w: store name is required", ErrValidation)
	}
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	if settings.Currency == "" {
		settings.Currency = "INR"
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}
