package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cajabooks/internal/config"
	"cajabooks/internal/database"
	"cajabooks/internal/importer"
	"cajabooks/internal/logger"
	"cajabooks/internal/models"
)

func main() {
	write := flag.Bool("write", false, "write parsed expenses to the database")
	mode := flag.String("mode", "insert", "write mode: insert or upsert")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: importcsv [-write] [-mode insert|upsert] <path-to-csv>")
		os.Exit(1)
	}
	csvPath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)

	if cfg.Database.Path == "" {
		fmt.Fprintln(os.Stderr, "no database configured (set CAJABOOKS_DATABASE_PATH)")
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "init database:", err)
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open csv:", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := importer.ReadRows(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read csv:", err)
		os.Exit(1)
	}

	stores, err := db.ListStoreRefs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "list stores:", err)
		os.Exit(1)
	}

	processed, flagged := importer.ParseRows(rows, stores)

	fmt.Printf("Rows parsed: %d\n", len(processed))
	fmt.Printf("Flagged for review: %d\n\n", flagged)

	fmt.Println("Parsed rows:")
	fmt.Println("------------")
	for _, p := range processed {
		matchInfo := "no match"
		if p.Matched != nil {
			matchInfo = fmt.Sprintf("%s (%.2f)", p.Matched.Name, p.Matched.Confidence)
		}
		reviewMark := " "
		if p.Expense.NeedsReview {
			reviewMark = "!"
		}
		fmt.Printf("  %s %s | %-24s | %10.2f | %-20s | %s\n",
			reviewMark,
			p.Expense.Date,
			truncate(p.Expense.Provider, 24),
			p.Expense.Total,
			truncate(p.Expense.ExpenseType, 20),
			matchInfo,
		)
	}

	if !*write {
		fmt.Println("\nDry run; pass -write to import.")
		return
	}

	expenses := make([]models.ExpenseRecord, 0, len(processed))
	for _, p := range processed {
		expenses = append(expenses, p.Expense)
	}

	var store importer.Inserter = importer.InserterFunc(db.InsertExpenses)
	if *mode == "upsert" {
		store = importer.InserterFunc(db.InsertExpensesIgnore)
	}

	writer := importer.Writer{
		Store:     store,
		BatchSize: cfg.Import.BatchSize,
		Delay:     time.Duration(cfg.Import.BatchDelayMs) * time.Millisecond,
	}
	result := writer.Write(context.Background(), expenses)

	fmt.Println("\nImport result:")
	fmt.Println("--------------")
	fmt.Printf("  Success:    %d\n", result.Success)
	fmt.Printf("  Errors:     %d\n", result.Errors)
	fmt.Printf("  Duplicates: %d\n", result.Duplicates)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
