package cmd

import (
	"context"
	"errors"
	"fmt"

	"evspare/internal/db"
	"evspare/internal/models"
	"evspare/internal/repositories"
	"evspare/internal/services"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo categories, products, accounts and store settings",
	Long: `Loads the demo catalog and the two demo accounts:

	admin@elyfevspare.com / admin123
	customer@example.com  / customer123

Rows that already exist are left alone, so seed can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		conn, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close(conn)

		hasher, err := services.NewPasswordHasher(cfg.Auth.PasswordScheme, cfg.Auth.Pepper)
		if err != nil {
			return err
		}

		s := seeder{
			users:      repositories.NewGORMUserRepository(conn),
			products:   repositories.NewGORMProductRepository(conn),
			categories: repositories.NewGORMCategoryRepository(conn),
			settings:   repositories.NewGORMSettingsRepository(conn),
			hasher:     hasher,
			log:        log,
		}
		return s.run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type demoAccount struct {
	Email     string
	Password  string
	Role      models.Role
	FirstName string
	LastName  string
}

var demoAccounts = []demoAccount{
	{Email: "admin@elyfevspare.com", Password: "admin123", Role: models.RoleAdmin, FirstName: "Admin", LastName: "User"},
	{Email: "customer@example.com", Password: "customer123", Role: models.RoleCustomer, FirstName: "John", LastName: "Doe"},
}

var demoCategories = []models.Category{
	{Name: "60V Lithium Charger", Slug: "60v-lithium"},
	{Name: "48V Lithium Charger", Slug: "48v-lithium"},
	{Name: "72V Lithium Charger", Slug: "72v-lithium"},
	{Name: "Liners & Brake Cables", Slug: "liners-brake"},
	{Name: "Controllers", Slug: "controllers"},
	{Name: "Hub Motors", Slug: "motors"},
	{Name: "Battery Packs", Slug: "batteries"},
	{Name: "Accessories", Slug: "accessories"},
}

// demoProduct refers to its category by slug.
type demoProduct struct {
	Category string
	Product  models.Product
}

var demoProducts = []demoProduct{
	{"60v-lithium", models.Product{Name: "[IMP 67.2V+6A] LITHIUM EV CHARGER (0268)", SKU: "0268", Price: 748, StockQuantity: 40}},
	{"60v-lithium", models.Product{Name: "[IMP 67.2V+3A] LITHIUM EV CHARGER (0271)", SKU: "0271", Price: 598, StockQuantity: 40}},
	{"60v-lithium", models.Product{Name: "[IMP 67.2V+2A] COMPACT CHARGER (0274)", SKU: "0274", Price: 498, StockQuantity: 25}},
	{"48v-lithium", models.Product{Name: "[IMP 54.6V+5A] LITHIUM EV CHARGER (0280)", SKU: "0280", Price: 698, StockQuantity: 30}},
	{"48v-lithium", models.Product{Name: "[IMP 54.6V+4A] LITHIUM EV CHARGER (0281)", SKU: "0281", Price: 598, StockQuantity: 30}},
	{"48v-lithium", models.Product{Name: "[IMP 54.6V+8A] RAPID CHARGER (0284)", SKU: "0284", Price: 898, StockQuantity: 15}},
	{"72v-lithium", models.Product{Name: "[IMP 84V+6A] LITHIUM EV CHARGER (0291)", SKU: "0291", Price: 948, StockQuantity: 20}},
	{"72v-lithium", models.Product{Name: "[IMP 84V+10A] RAPID CHARGER (0294)", SKU: "0294", Price: 1348, StockQuantity: 10}},
	{"liners-brake", models.Product{Name: "FRONT BRAKE CABLE ASSEMBLY (0300)", SKU: "0300", Price: 120, StockQuantity: 100}},
	{"liners-brake", models.Product{Name: "BRAKE LINER SET - FRONT (0302)", SKU: "0302", Price: 85, StockQuantity: 150}},
	{"controllers", models.Product{Name: "48V 25A SINE WAVE CONTROLLER (0400)", SKU: "0400", Price: 1250, StockQuantity: 20}},
	{"controllers", models.Product{Name: "60V 30A SINE WAVE CONTROLLER (0401)", SKU: "0401", Price: 1450, StockQuantity: 20}},
	{"motors", models.Product{Name: "350W HUB MOTOR - REAR (0500)", SKU: "0500", Price: 3500, StockQuantity: 8}},
	{"motors", models.Product{Name: "500W HUB MOTOR - REAR (0501)", SKU: "0501", Price: 4200, StockQuantity: 8}},
	{"batteries", models.Product{Name: "48V 20AH LITHIUM BATTERY PACK (0600)", SKU: "0600", Price: 12500, StockQuantity: 5}},
	{"batteries", models.Product{Name: "60V 24AH LITHIUM BATTERY PACK (0601)", SKU: "0601", Price: 15500, StockQuantity: 5}},
	{"accessories", models.Product{Name: "LED HEADLIGHT ASSEMBLY (0700)", SKU: "0700", Price: 450, StockQuantity: 60}},
	{"accessories", models.Product{Name: "DIGITAL SPEEDOMETER (0701)", SKU: "0701", Price: 650, StockQuantity: 35}},
}

// seeder writes the demo data through the repositories.
type seeder struct {
	users      repositories.UserRepository
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	settings   repositories.SettingsRepository
	hasher     services.PasswordHasher
	log        zerolog.Logger
}

func (s seeder) run(ctx context.Context) error {
	slugs, err := s.seedCategories(ctx)
	if err != nil {
		return err
	}
	if err := s.seedProducts(ctx, slugs); err != nil {
		return err
	}
	if err := s.seedAccounts(ctx); err != nil {
		return err
	}
	if err := s.seedSettings(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("demo data seeded")
	return nil
}

// seedCategories returns category ids keyed by slug.
func (s seeder) seedCategories(ctx context.Context) (map[string]string, error) {
	ids := make(map[string]string, len(demoCategories))
	for _, c := range demoCategories {
		existing, err := s.categories.GetBySlug(ctx, c.Slug)
		if err == nil {
			ids[c.Slug] = existing.ID
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("lookup category %s: %w", c.Slug, err)
		}
		category := c
		if err := s.categories.Create(ctx, &category); err != nil {
			return nil, err
		}
		ids[c.Slug] = category.ID
	}
	return ids, nil
}

func (s seeder) seedProducts(ctx context.Context, categoryIDs map[string]string) error {
	created := 0
	for _, d := range demoProducts {
		p := d.Product
		p.CategoryID = categoryIDs[d.Category]
		p.Unit = "PCS"
		p.IsActive = true
		err := s.products.Create(ctx, &p)
		if repositories.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	s.log.Info().Int("created", created).Int("total", len(demoProducts)).Msg("products seeded")
	return nil
}

func (s seeder) seedAccounts(ctx context.Context) error {
	for _, a := range demoAccounts {
		hash, err := s.hasher.Hash(a.Password)
		if err != nil {
			return err
		}
		user := &models.User{
			Email:        a.Email,
			PasswordHash: hash,
			Role:         a.Role,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			IsActive:     true,
		}
		err = s.users.Create(ctx, user)
		if repositories.IsUniqueViolation(err) {
			s.log.Info().Str("email", a.Email).Msg("account exists, skipping")
			continue
		}
		if err != nil {
			return err
		}
		s.log.Info().Str("email", a.Email).Str("role", string(a.Role)).Msg("account created")
	}
	return nil
}

func (s seeder) seedSettings(ctx context.Context) error {
	_, err := s.settings.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	defaults := models.DefaultStoreSettings()
	return s.settings.Save(ctx, &defaults)
}
