package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dvloznov/backoffice/internal/config"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	"github.com/dvloznov/backoffice/internal/jobs"
	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/dvloznov/backoffice/internal/pipeline"
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/dvloznov/backoffice/internal/schedule"
	"github.com/dvloznov/backoffice/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "payroll", "statement", "sales", "menu":
		runProcess(log, os.Args[1])
	case "schedule":
		runSchedule(log)
	case "fetch":
		runFetch(log)
	case "upload":
		runUpload(log)
	case "rates":
		runRates(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Restaurant back office CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  payroll    Reconcile a payroll export into the final payroll report")
	fmt.Println("  statement  Categorize a bank statement and build the P&L")
	fmt.Println("  sales      Summarize a sales history export")
	fmt.Println("  menu       Summarize a menu sales export")
	fmt.Println("  schedule   Show the weekly employee schedule")
	fmt.Println("  fetch      Fetch the newest emailed report and process it")
	fmt.Println("  upload     Upload an export to GCS")
	fmt.Println("  rates      List or set employee hourly rates")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// setup loads configuration and builds the service. The caller closes it.
func setup(log zerolog.Logger) (context.Context, context.CancelFunc, *service.Service, zerolog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	ctx = logger.WithContext(ctx, log)

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	return ctx, cancel, svc, log
}

func runProcess(log zerolog.Logger, kind string) {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	file := fs.String("file", "", "path to the xlsx or csv export")
	out := fs.String("out", "", "where to write the generated workbook (payroll and statement)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msgf("Usage: cli %s -file PATH [-out PATH]", kind)
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	ctx, cancel, svc, log := setup(log)
	defer cancel()
	defer svc.Close()

	state, err := svc.Process(ctx, kind, filepath.Base(*file), "", data)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Processing failed")
	}
	report(state, *out, log)
}

func report(state *pipeline.PipelineState, out string, log zerolog.Logger) {
	if state.Statement != nil {
		fmt.Println(pnl.Text(state.Statement))
	}
	if state.Payroll != nil {
		for _, rowErr := range state.Payroll.RowErrors {
			fmt.Printf("skipped row %d: %v\n", rowErr.Row, rowErr.Err)
		}
	}
	fmt.Println(state.Summary)
	if state.Narrative != "" {
		fmt.Println()
		fmt.Println(state.Narrative)
	}

	if len(state.Report) > 0 {
		if out == "" {
			out = state.ReportFilename
		}
		if err := os.WriteFile(out, state.Report, 0o644); err != nil {
			log.Fatal().Err(err).Str("out", out).Msg("Failed to write report")
		}
		fmt.Printf("Wrote %s\n", out)
	}
	for _, uri := range state.Outputs {
		fmt.Printf("Archived %s\n", uri)
	}
}

func runSchedule(log zerolog.Logger) {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	file := fs.String("file", "", "path to the schedule workbook (omit to fetch it from the inbox)")
	employee := fs.String("employee", "", "only show this employee")
	fs.Parse(os.Args[2:])

	var (
		sched *schedule.Schedule
		err   error
	)
	if *file != "" {
		data, readErr := os.ReadFile(*file)
		if readErr != nil {
			log.Fatal().Err(readErr).Msg("Failed to read file")
		}
		sched, err = schedule.Parse(filepath.Base(*file), data)
	} else {
		ctx, cancel, svc, _ := setup(log)
		defer cancel()
		defer svc.Close()
		sched, err = svc.FetchSchedule(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read schedule")
	}

	shifts := sched.Shifts
	if *employee != "" {
		shifts = sched.ForEmployee(*employee)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tEMPLOYEE\tDAY\tSHIFT")
	for _, sh := range shifts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sh.Section, sh.Employee, sh.Day, sh.Value)
	}
	w.Flush()
}

func runFetch(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	kind := fs.String("type", "", "report to fetch: payroll, sales or menu")
	out := fs.String("out", "", "where to write the generated workbook")
	fs.Parse(os.Args[2:])

	if _, ok := service.FilterFor(*kind); !ok || *kind == "schedule" {
		log.Fatal().Msg("Usage: cli fetch -type payroll|sales|menu [-out PATH]")
	}

	ctx, cancel, svc, log := setup(log)
	defer cancel()
	defer svc.Close()

	state, err := svc.FetchAndProcess(ctx, *kind)
	if err != nil {
		log.Fatal().Err(err).Str("type", *kind).Msg("Fetch failed")
	}
	report(state, *out, log)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	kind := fs.String("type", "", "export type: payroll, statement, sales or menu")
	filePath := fs.String("file", "", "path to local export")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -type TYPE -file PATH")
	}
	jobType, err := jobs.ParseJobType(*kind)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -type")
	}

	ctx := logger.WithContext(context.Background(), log)
	objectName := gcsuploader.UploadObjectName(string(jobType), *filePath, time.Now())

	log.Info().
		Str("bucket", *bucketName).
		Str("object", objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsuploader.UploadFile(ctx, *bucketName, objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsuploader.URI(*bucketName, objectName))
}

func runRates(log zerolog.Logger) {
	fs := flag.NewFlagSet("rates", flag.ExitOnError)
	key := fs.String("set", "", "employee ID or name to set a rate for")
	rate := fs.String("rate", "", "hourly rate, used with -set")
	fs.Parse(os.Args[2:])

	_, cancel, svc, log := setup(log)
	defer cancel()
	defer svc.Close()

	if *key != "" {
		r, err := decimal.NewFromString(strings.TrimPrefix(*rate, "$"))
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -rate")
		}
		if err := svc.SetRate(*key, r); err != nil {
			log.Fatal().Err(err).Msg("Failed to set rate")
		}
		fmt.Printf("Set %s to $%s\n", *key, r.StringFixed(2))
		return
	}

	entries := svc.RateEntries()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMPLOYEE\tRATE")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t$%s\n", k, entries[k].StringFixed(2))
	}
	w.Flush()
}
