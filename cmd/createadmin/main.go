// Command createadmin provisions an administrator identity. Admins cannot
// register through the API.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/careconnect-api/internal/config"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/postgres"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (or ADMIN_PASSWORD)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		flag.Usage()
		log.Fatal().Msg("email and a password of at least 8 characters are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Log.ToLoggerConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database.ToPostgresConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	user, err := model.NewUser(*email, *firstName, *lastName, nil, model.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid admin")
	}
	user.PasswordHash, err = security.NewBcryptHasher(bcrypt.DefaultCost).Hash(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	if err := postgres.NewUserRepository(postgres.NewBaseRepository(db)).Create(ctx, user); err != nil {
		log.Fatal().Err(err).Str("email", user.Email).Msg("failed to create admin")
	}
	log.Info().Int64("id", user.ID).Str("email", user.Email).Msg("admin created")
}
