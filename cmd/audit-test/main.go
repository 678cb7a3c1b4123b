package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"agegate/internal/audit"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Create store and publisher with a small buffer to test backpressure
	store := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(
		store,
		audit.WithAsyncBuffer(10),
		audit.WithPublisherLogger(logger),
	)

	// Start metrics server in background
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		fmt.Println("Metrics available at http://localhost:9090/metrics")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	ctx := context.Background()

	fmt.Println("\n=== Audit Publisher Test ===")

	// Test 1: Emit some events normally
	fmt.Println("1. Emitting 5 events (should all land)...")
	for i := 0; i < 5; i++ {
		event := audit.Event{
			Principal: "verifier-1",
			Subject:   "alice",
			Action:    string(audit.EventCommitmentCreated),
			Decision:  "accepted",
			Reason:    fmt.Sprintf("test event %d", i+1),
			RequestID: uuid.New().String(),
		}
		if err := publisher.Emit(ctx, event); err != nil {
			fmt.Printf("   Event %d failed: %v\n", i+1, err)
		} else {
			fmt.Printf("   Event %d emitted\n", i+1)
		}
		time.Sleep(50 * time.Millisecond) // Small delay to let worker process
	}

	// Give worker time to process
	time.Sleep(200 * time.Millisecond)

	// Test 2: Flood the buffer to trigger drops. Emit never blocks the hot
	// path; overflow is dropped and logged, so the landed count tells the story.
	fmt.Println("\n2. Flooding buffer with 50 events (buffer size is 10)...")
	for i := 0; i < 50; i++ {
		event := audit.Event{
			Principal: "verifier-1",
			Subject:   "alice",
			Action:    string(audit.EventProofSubmitted),
			Decision:  "accepted",
			Reason:    fmt.Sprintf("flood event %d", i+1),
			RequestID: uuid.New().String(),
		}
		_ = publisher.Emit(ctx, event)
	}

	// Give worker time to process remaining
	time.Sleep(500 * time.Millisecond)

	// Test 3: Check store contents
	fmt.Println("\n3. Checking store contents...")
	landed, _ := store.ListBySubject(ctx, "alice")
	fmt.Printf("   Events in store for subject: %d (55 emitted; the gap is dropped overflow)\n", len(landed))

	fmt.Println("\n=== Metrics Summary ===")
	fmt.Println("View full metrics at: http://localhost:9090/metrics")
	fmt.Println("Filter with: curl -s http://localhost:9090/metrics | grep agegate")
	fmt.Println("\nPress Ctrl+C to exit...")

	// Keep server running
	select {}
}
