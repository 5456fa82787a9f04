package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Dosada05/team-hub/config"
	"github.com/Dosada05/team-hub/db"
	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/Dosada05/team-hub/services"
	"go.uber.org/zap"
)

const usage = `usage: adminctl invite -email <address>

Creates a one-time platform admin invitation and prints its token.
The token is also emailed when SMTP is configured.`

func main() {
	if len(os.Args) < 2 || os.Args[1] != "invite" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("invite", flag.ExitOnError)
	email := fs.String("email", "", "email address of the future admin")
	_ = fs.Parse(os.Args[2:])

	if *email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(2)
	}

	if err := invite(*email); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func invite(email string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}

	var mailer notify.Mailer = notify.NewLogMailer(log.Named("mail"))
	if cfg.SMTP.Enabled() {
		mailer = notify.NewGomailMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	authService := services.NewAuthService(
		repositories.NewUserRepository(dbConn),
		repositories.NewAdminInviteRepository(dbConn),
		repositories.NewTxManager(dbConn),
		repositories.NewMemoryTokenDenylist(),
		services.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTTTL),
		mailer,
		cfg.AdminInviteTTL,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := authService.CreateAdminInvite(ctx, nil, email)
	if err != nil {
		return err
	}

	log.Info("admin invite created", zap.String("email", result.Invite.Email), zap.Time("expires_at", result.Invite.ExpiresAt))
	fmt.Println("Invite token:", result.Token)
	return nil
}
