package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"ledgerlink/internal/infrastructure/crypto"
	"ledgerlink/internal/infrastructure/payments"
	"ledgerlink/internal/infrastructure/postgres"
	"ledgerlink/internal/shared/config"
)

const usage = `LedgerLink Admin CLI - Management commands for the LedgerLink API

Usage:
  admin <command> [options]

Commands:
  link-audit           Report external account ids recorded on more than one bank link
  provision-customers  Provision payment-network customers for users that never got one

Examples:
  # Report duplicate bank links
  admin link-audit

  # Backfill payment customers after signup-time provisioning failures
  admin provision-customers

  # Preview the backfill without calling the payment network
  admin provision-customers --dry-run

  # Run with timeout
  admin link-audit --timeout=5m
`

func main() {
	// Load .env if present; real environments set variables directly
	godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "link-audit":
		runLinkAudit(os.Args[2:])
	case "provision-customers":
		runProvisionCustomers(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Printf("%s\n", usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}
}

// runLinkAudit reports external account ids that appear on more than
// one bank link row. Such rows break shareable-id resolution, so
// transfers to those accounts fail until an operator removes the
// extras.
func runLinkAudit(args []string) {
	fs := flag.NewFlagSet("link-audit", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin link-audit [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to create encryptor: %v", err)
	}
	bankLinkRepo := postgres.NewBankLinkRepository(db, encryptor)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	duplicates, err := bankLinkRepo.ListDuplicateAccountIDs(ctx)
	if err != nil {
		log.Fatalf("Link audit failed: %v", err)
	}

	if len(duplicates) == 0 {
		fmt.Println("No duplicate bank links found")
		return
	}

	accountIDs := make([]string, 0, len(duplicates))
	for accountID := range duplicates {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	fmt.Printf("\n=== Duplicate bank links: %d account id(s) ===\n", len(accountIDs))
	for _, accountID := range accountIDs {
		fmt.Printf("  %s: %d links\n", accountID, duplicates[accountID])
	}
	fmt.Println("\nTransfers to these accounts fail until the extra links are removed.")
	os.Exit(1)
}

// runProvisionCustomers backfills payment-network customers for users
// whose signup-time provisioning failed.
func runProvisionCustomers(args []string) {
	fs := flag.NewFlagSet("provision-customers", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "List affected users without calling the payment network")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin provision-customers [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	userRepo := postgres.NewUserRepository(db)
	paymentsClient := payments.NewClient(payments.Config{
		Key:         cfg.Payments.Key,
		Secret:      cfg.Payments.Secret,
		Environment: cfg.Payments.Environment,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	users, err := userRepo.ListWithoutPaymentCustomer(ctx)
	if err != nil {
		log.Fatalf("Failed to list users without payment customers: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("All users have payment customers")
		return
	}

	log.Printf("Found %d user(s) without a payment customer", len(users))

	if *dryRun {
		for _, u := range users {
			fmt.Printf("  would provision: user %d (%s)\n", u.ID, u.Email)
		}
		return
	}

	startTime := time.Now()
	provisioned, failed := 0, 0

	for _, u := range users {
		customerURL, err := paymentsClient.CreateCustomer(ctx, payments.CustomerParams{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		})
		if err != nil {
			log.Printf("User %d: failed to provision payment customer: %v", u.ID, err)
			failed++
			continue
		}

		customerID := payments.CustomerIDFromURL(customerURL)
		if err := userRepo.SetPaymentCustomer(ctx, u.ID, customerID, customerURL); err != nil {
			log.Printf("User %d: failed to record payment customer %s: %v", u.ID, customerID, err)
			failed++
			continue
		}

		log.Printf("User %d: provisioned payment customer %s", u.ID, customerID)
		provisioned++
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\n=== Provisioning complete ===\n")
	fmt.Printf("  Provisioned: %d\n", provisioned)
	fmt.Printf("  Failed:      %d\n", failed)
	log.Printf("Provisioning completed in %v", elapsed)

	if failed > 0 {
		os.Exit(1)
	}
}
