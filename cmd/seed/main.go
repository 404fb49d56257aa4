package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/oksasatya/user-auth-service/config"
	"github.com/oksasatya/user-auth-service/internal/container"
	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/pkg/apperror"
	"github.com/oksasatya/user-auth-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "demo@example.com", "email of the seeded user")
	name := flag.String("name", "Demo User", "display name of the seeded user")
	password := flag.String("password", "", "password; prompted when empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	pwd := *password
	if pwd == "" {
		if pwd, err = promptPassword(); err != nil {
			log.Fatalf("failed to read password: %v", err)
		}
	}

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	in := entity.Signup{Email: *email, Password: pwd}
	if n := strings.TrimSpace(*name); n != "" {
		in.Name = &n
	}
	_, u, err := c.AuthService().Signup(ctx, in)
	switch {
	case apperror.Is(err, apperror.KindDuplicateEmail):
		fmt.Printf("user already exists: email=%s\n", entity.NormalizeEmail(*email))
	case err != nil:
		var ae *apperror.Error
		if errors.As(err, &ae) && len(ae.Fields) > 0 {
			for _, f := range ae.Fields {
				fmt.Fprintf(os.Stderr, "%s: %s\n", f.Field, f.Message)
			}
		}
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%s email=%s name=%s\n", u.ID, u.Email, u.Name)
	}
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; pass -password")
	}
	fmt.Print("Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
