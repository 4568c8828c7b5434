package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fortuna/sideline/internal/validate"
)

const (
	appName    = "sideline-validate"
	appVersion = "1.0.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dataDir        = flag.String("data-dir", getEnv("PDF_STORAGE_DIR", "data"), "Directory holding report CSV files")
		strictWarnings = flag.Bool("strict-warnings", false, "Treat warnings as errors")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "%s v%s - validate extracted injury report CSV files\n\n", appName, appVersion)
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [csv-path]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without a path, validates the latest CSV in -data-dir.")
		flag.PrintDefaults()
	}
	flag.Parse()

	csvPath := flag.Arg(0)
	if csvPath == "" {
		csvPath = validate.FindLatestCSV(*dataDir)
		if csvPath == "" {
			fmt.Printf("FAIL: no CSV found in %s\n", *dataDir)
			return 2
		}
	}
	if _, err := os.Stat(csvPath); err != nil {
		fmt.Printf("FAIL: file not found: %s\n", csvPath)
		return 2
	}

	result, err := validate.File(csvPath, *strictWarnings)
	if err != nil {
		fmt.Printf("FAIL: %v\n", err)
		return 2
	}

	warnings := result.Warnings()
	if result.OK() {
		fmt.Printf("PASS: %s rows=%d warnings=%d\n", result.CSVPath, result.RowCount, len(warnings))
		for _, warning := range warnings {
			fmt.Println(warning)
		}
		return 0
	}

	fmt.Printf("FAIL: %s rows=%d errors=%d warnings=%d\n",
		result.CSVPath, result.RowCount, len(result.Errors()), len(warnings))
	for _, issue := range result.Issues {
		fmt.Println(issue)
	}
	return 1
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
