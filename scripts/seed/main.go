// Seed adds demo tasks through the configured store. Run from project root:
// STORE_DRIVER=postgres DATABASE_URL=... go run ./scripts/seed -n 1000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/models"

	"github.com/google/uuid"
)

func main() {
	total := flag.Int("n", 100, "number of tasks to insert")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Init(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config failed:", err)
		os.Exit(1)
	}
	if cfg.StoreDriver == config.DriverMemory {
		fmt.Fprintln(os.Stderr, "STORE_DRIVER=memory: seeded tasks would vanish on exit; set STORE_DRIVER=postgres")
		os.Exit(1)
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Store failed:", err)
		os.Exit(1)
	}
	defer store.Close()

	start := time.Now()
	for i := 1; i <= *total; i++ {
		now := time.Now().UTC()
		task := models.Task{
			ID:          uuid.New().String(),
			Title:       fmt.Sprintf("Task %d", i),
			Description: fmt.Sprintf("Description for task %d", i),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.Insert(ctx, database.TasksTable, task); err != nil {
			fmt.Fprintln(os.Stderr, "\nInsert failed:", err)
			os.Exit(1)
		}
		if i%100 == 0 || i == *total {
			fmt.Printf("\rInserted %d / %d", i, *total)
		}
	}

	fmt.Printf("\nDone: %d tasks in %v\n", *total, time.Since(start))
}
