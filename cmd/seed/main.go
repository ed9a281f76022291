package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := helpers.RequireSalt(cfg.PasswordSalt); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	seedUsers := []struct {
		name     string
		email    string
		userType entity.UserType
		password string
	}{
		{"Ann", "ann@example.com", entity.UserTypeRegular, "secret1"},
		{"Keks", "keks@example.com", entity.UserTypePro, "torrance"},
	}

	for _, s := range seedUsers {
		u := entity.NewUser(entity.CreateUserInput{Name: s.name, Email: s.email, Type: s.userType})
		if err := u.SetPassword(s.password, cfg.PasswordSalt); err != nil {
			log.Fatalf("failed to hash password for %s: %v", s.email, err)
		}

		var id string
		err = db.QueryRow(`
			INSERT INTO users (name, email, avatar_path, password_hash, user_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, u.Name, u.Email, u.AvatarPath, u.Password(), string(u.Type)).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", s.email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s type=%s password=%s\n", id, s.email, s.userType, s.password)
	}
}
