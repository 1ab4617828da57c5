package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/logging"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type priced struct {
	name string
	cost string
}

// Starter catalog. Entries that already exist by name are left untouched.
var (
	orderTypes = []string{"Comedor", "Para llevar", "Domicilio"}
	tables     = []string{"Mesa 1", "Mesa 2", "Mesa 3", "Mesa 4", "Barra"}
	products   = []struct {
		priced
		stock int32
	}{
		{priced{"Refresco", "20.00"}, 48},
		{priced{"Agua de horchata", "25.00"}, 30},
		{priced{"Cerveza", "35.00"}, 24},
	}
	dishes = []priced{{"Enchiladas", "50.00"}, {"Chilaquiles", "60.00"}, {"Tacos (3)", "45.00"}}
	stews  = []string{"Mole", "Salsa verde", "Chicharrón prensado"}
	extras = []priced{{"Queso extra", "15.00"}, {"Crema", "10.00"}, {"Aguacate", "18.00"}}
)

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	skipCatalog := flag.Bool("skip-catalog", false, "Only seed the admin user")
	flag.Parse()

	logging.Init("info", true)

	// Fall back to environment variables, then defaults
	*email = firstNonEmpty(*email, os.Getenv("SEED_EMAIL"), "admin@comanda.local")
	*name = firstNonEmpty(*name, os.Getenv("SEED_NAME"), "Administrador")
	*password = firstNonEmpty(*password, os.Getenv("SEED_PASSWORD"))
	if *password == "" {
		*password = "password123"
		log.Warn().Msg("using default password 'password123'; change it immediately in production")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	// Seed in a transaction: everything or nothing.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := database.New(tx)

	user, err := seedAdmin(ctx, q, *email, *password, *name)
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}
	if !*skipCatalog {
		if err := seedCatalog(ctx, q); err != nil {
			log.Fatal().Err(err).Msg("seed catalog")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit")
	}

	log.Info().Str("admin_id", user.ID.String()).Str("email", user.Email).Msg("seed completed")
}

// seedAdmin creates or refreshes the admin user.
func seedAdmin(ctx context.Context, q *database.Queries, email, password, fullName string) (database.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, fmt.Errorf("hash password: %w", err)
	}
	return q.UpsertUser(ctx, database.UpsertUserParams{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		Role:           enum.RoleAdmin,
	})
}

func seedCatalog(ctx context.Context, q *database.Queries) error {
	for _, n := range orderTypes {
		if _, err := q.CreateOrderType(ctx, n); err != nil {
			return fmt.Errorf("tipo de orden %q: %w", n, err)
		}
	}

	existingTables, err := q.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list mesas: %w", err)
	}
	have := make(map[string]bool)
	for _, t := range existingTables {
		have[t.Name] = true
	}
	for _, n := range tables {
		if have[n] {
			continue
		}
		if _, err := q.CreateTable(ctx, n); err != nil {
			return fmt.Errorf("mesa %q: %w", n, err)
		}
	}

	existingProducts, err := q.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list productos: %w", err)
	}
	have = make(map[string]bool)
	for _, p := range existingProducts {
		have[p.Name] = true
	}
	for _, p := range products {
		if have[p.name] {
			continue
		}
		cost, err := money(p.cost)
		if err != nil {
			return err
		}
		if _, err := q.CreateProduct(ctx, database.CreateProductParams{Name: p.name, Cost: cost, Stock: p.stock}); err != nil {
			return fmt.Errorf("producto %q: %w", p.name, err)
		}
	}

	existingDishes, err := q.ListDishes(ctx)
	if err != nil {
		return fmt.Errorf("list platillos: %w", err)
	}
	have = make(map[string]bool)
	for _, d := range existingDishes {
		have[d.Name] = true
	}
	for _, d := range dishes {
		if have[d.name] {
			continue
		}
		cost, err := money(d.cost)
		if err != nil {
			return err
		}
		if _, err := q.CreateDish(ctx, d.name, cost); err != nil {
			return fmt.Errorf("platillo %q: %w", d.name, err)
		}
	}

	existingStews, err := q.ListStews(ctx)
	if err != nil {
		return fmt.Errorf("list guisos: %w", err)
	}
	have = make(map[string]bool)
	for _, s := range existingStews {
		have[s.Name] = true
	}
	for _, n := range stews {
		if have[n] {
			continue
		}
		if _, err := q.CreateStew(ctx, n); err != nil {
			return fmt.Errorf("guiso %q: %w", n, err)
		}
	}

	existingExtras, err := q.ListExtras(ctx)
	if err != nil {
		return fmt.Errorf("list extras: %w", err)
	}
	have = make(map[string]bool)
	for _, e := range existingExtras {
		have[e.Name] = true
	}
	for _, e := range extras {
		if have[e.name] {
			continue
		}
		cost, err := money(e.cost)
		if err != nil {
			return err
		}
		if _, err := q.CreateExtra(ctx, e.name, cost); err != nil {
			return fmt.Errorf("extra %q: %w", e.name, err)
		}
	}

	log.Info().
		Int("tipos_orden", len(orderTypes)).
		Int("mesas", len(tables)).
		Int("productos", len(products)).
		Int("platillos", len(dishes)).
		Int("guisos", len(stews)).
		Int("extras", len(extras)).
		Msg("catalog seeded")
	return nil
}

func money(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, fmt.Errorf("parse cost %q: %w", s, err)
	}
	d = d.Round(2)
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
