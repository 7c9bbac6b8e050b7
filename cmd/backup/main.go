package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mealplan/internal/config"
	"mealplan/internal/database"
	"mealplan/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importInput := importCmd.String("input", "", "Input backup file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *exportOutput)
	case "import":
		importCmd.Parse(os.Args[2:])
		handleImport(backupService, *importInput, *importClear)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting database to %s...", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	info, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Export complete: %s (%d bytes)", outputPath, info.Size())
	} else {
		log.Printf("Export complete: %s", outputPath)
	}
}

func handleImport(backupService *service.BackupService, inputPath string, clear bool) {
	if inputPath == "" {
		log.Fatal("Input file path is required (use -input)")
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Backup file not found: %s", inputPath)
	}

	if clear {
		fmt.Print("This will delete ALL existing data. Type 'yes' to continue: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			log.Println("Import cancelled")
			return
		}

		log.Println("Clearing existing data...")
		if err := clearDatabase(backupService); err != nil {
			log.Fatalf("Failed to clear database: %v", err)
		}
	}

	log.Printf("Importing database from %s...", inputPath)
	if err := backupService.Import(inputPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete")
}

// clearDatabase deletes all rows in reverse dependency order
func clearDatabase(backupService *service.BackupService) error {
	tables := []string{
		"suggestion_logs",
		"ingredients",
		"steps",
		"meals",
		"sessions",
		"users",
		"families",
	}

	db := backupService.GetDB()
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	return nil
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  backup export [-output <file>]   Export the database to a JSON backup file")
	fmt.Println("  backup import -input <file> [-clear]")
	fmt.Println("                                   Import a JSON backup file into the database")
}
