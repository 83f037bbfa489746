package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [up|drop]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id BIGSERIAL PRIMARY KEY,
			creator_id TEXT NOT NULL,
			creator_name TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			group_id TEXT NOT NULL DEFAULT '',
			server TEXT NOT NULL CHECK (server IN ('日服', '台服', '国际服', '国服'))
		)`,
		`CREATE TABLE IF NOT EXISTS team_members (
			id BIGSERIAL PRIMARY KEY,
			team_id BIGINT NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			nickname TEXT NOT NULL,
			UNIQUE (team_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_start_time ON teams (start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members (team_id)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS team_members`,
		`DROP TABLE IF EXISTS teams`,
	} {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}
