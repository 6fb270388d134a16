package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/repository"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/config"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/database"
)

// Seeds the initial admin account from ADMIN_EMAIL, ADMIN_PASSWORD and
// ADMIN_NAME. Safe to run repeatedly: an existing account is left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	if name == "" {
		name = "Administrator"
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewUserRepository(db)

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check for existing admin: %v", err)
	}
	if existing != nil {
		log.Printf("admin account %s already exists, nothing to do", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.User{
		Email:           email,
		PasswordHash:    string(hash),
		Name:            name,
		Role:            models.RoleAdmin,
		IsEmailVerified: true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	log.Printf("admin account %s created", email)
}
