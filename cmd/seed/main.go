// seed crea el usuario administrador inicial (password con bcrypt).
//
// Uso: go run ./cmd/seed -email admin@almacen.local -password 'clave-segura' [-nombre "Administrador"] [-rol admin]
// Usa la misma configuración de base de datos que la API (DATABASE_URL / DB_*).
// Con DB_AUTO_MIGRATE=true aplica antes el esquema embebido.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "email del usuario")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "password (mínimo 8 caracteres)")
	name := flag.String("nombre", "Administrador", "nombre visible")
	role := flag.String("rol", entity.RoleAdmin, "rol: admin, bodeguero o vendedor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	user, err := authUC.CreateUser(ctx, *email, *password, *name, *role)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Warn().Str("email", *email).Msg("el usuario ya existe; no se modifica")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("crear usuario")
	}
	log.Info().Int64("id", user.ID).Str("email", user.Email).Str("rol", user.Role).Msg("usuario creado")
}
