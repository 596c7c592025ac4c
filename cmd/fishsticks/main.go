package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"fishsticks/internal/command"
	"fishsticks/internal/ledger"
	"fishsticks/internal/metrics"
	"fishsticks/internal/storage/sqlite"
	"fishsticks/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env", "error", err)
	}
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/fishsticks.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	env := &command.Env{
		BaseURL: getEnv("BASE_URL", "http://localhost:8080/"),
	}
	if !strings.HasSuffix(env.BaseURL, "/") {
		env.BaseURL += "/"
	}
	if sharebillURL := os.Getenv("SHAREBILL_URL"); sharebillURL != "" {
		var cookies []string
		if raw := os.Getenv("SHAREBILL_COOKIES"); raw != "" {
			cookies = strings.Split(raw, ",")
		}
		env.Ledger = ledger.New(sharebillURL, cookies)
		slog.Info("Sharebill configured", "url", sharebillURL)
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			slog.Info("Metrics listener starting", "address", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Error("Metrics listener failed", "error", err)
			}
		}()
	}

	runConsole(command.NewExecutor(store), env)
}

// runConsole reads one command per line from stdin and prints the
// structured response as JSON. The acting user is taken from
// FISHSTICKS_USER; sudo covers acting as somebody else.
func runConsole(executor *command.Executor, env *command.Env) {
	user := getEnv("FISHSTICKS_USER", "console")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, args, _ := strings.Cut(line, " ")
		resp, err := executor.Execute(context.Background(), cmd, command.Context{
			Args:     args,
			UserName: user,
			Env:      env,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		out, err := json.Marshal(resp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("%T %s\n", resp, out)
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Reading stdin failed", "error", err)
		os.Exit(1)
	}
}
