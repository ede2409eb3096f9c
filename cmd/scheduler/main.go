package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/camilozg/lending-engine/internal/config"
	"github.com/camilozg/lending-engine/internal/repository"
)

func main() {
	log.Println("Starting lending scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, loanRepo)

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanRepo repository.LoanRepository) {
	// Daily collections review: report active loans past their maximum
	// payment date
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		reportOverdueLoans(loanRepo)
	})
	if err != nil {
		log.Printf("Error scheduling overdue loan review job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func reportOverdueLoans(loanRepo repository.LoanRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loans, err := loanRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue loan review failed: %v", err)
		return
	}

	if len(loans) == 0 {
		log.Println("Overdue loan review: nothing overdue")
		return
	}

	for _, loan := range loans {
		log.Printf("Overdue loan %s (customer %s): outstanding %s, due %s",
			loan.ExternalID,
			loan.CustomerExternalID,
			loan.Outstanding.StringFixed(2),
			loan.MaximumPaymentDate.Format(time.RFC3339),
		)
	}

	log.Printf("Overdue loan review: %d loan(s) past maximum payment date", len(loans))
}
