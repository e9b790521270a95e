package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/sourcegraph/conc"
	"gopkg.in/yaml.v3"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/internal/client"
	"github.com/ngcde/assignment-tracker/internal/config"
	"github.com/ngcde/assignment-tracker/internal/eventbus"
	"github.com/ngcde/assignment-tracker/internal/server"
	"github.com/ngcde/assignment-tracker/internal/snapshot"
	"github.com/ngcde/assignment-tracker/pkg/clog"
	"github.com/ngcde/assignment-tracker/pkg/storage"
)

var (
	app  = kingpin.New("ngc-tracker", "Assignment tracker for the NGC design wing")
	addr = app.Flag("addr", "Tracker daemon address").Default("http://localhost:8080").String()

	serveCmd = app.Command("serve", "Run the tracker daemon")

	createCmd          = app.Command("create", "Create a new assignment")
	createTitle        = createCmd.Arg("title", "Assignment title").Required().String()
	createEngineer     = createCmd.Flag("engineer", "Assigned chief engineer role").Required().String()
	createDescription  = createCmd.Flag("description", "Assignment description").Required().String()
	createDue          = createCmd.Flag("due", "Due date (YYYY-MM-DD)").Required().String()
	createPriority     = createCmd.Flag("priority", "Priority (Low/Medium/High/Critical)").String()
	createCategory     = createCmd.Flag("category", "Category").String()
	createDeliverables = createCmd.Flag("deliverables", "Expected deliverables").String()
	createHours        = createCmd.Flag("hours", "Estimated hours").Int()

	listCmd      = app.Command("list", "List assignments")
	listEngineer = listCmd.Flag("engineer", "Filter by engineer role").String()
	listStatus   = listCmd.Flag("status", "Filter by status").String()
	listPriority = listCmd.Flag("priority", "Filter by priority").String()

	showCmd    = app.Command("show", "Show assignment details")
	showID     = showCmd.Arg("id", "Assignment ID").Required().Int()
	showFormat = showCmd.Flag("format", "Output format (yaml|json)").Default("yaml").Enum("yaml", "json")

	updateCmd      = app.Command("update", "Update an assignment")
	updateID       = updateCmd.Arg("id", "Assignment ID").Required().Int()
	updateStatus   = updateCmd.Flag("status", "New status").String()
	updateProgress = updateCmd.Flag("progress", "Progress percentage (0-100)").Default("-1").Int()
	updateHours    = updateCmd.Flag("hours", "Actual hours spent").Default("-1").Int()
	updateComment  = updateCmd.Flag("comment", "Progress comment").String()

	reportCmd = app.Command("report", "Show dashboard and analytics reports")

	exportCmd = app.Command("export", "Archive a snapshot of all assignments")

	importCmd  = app.Command("import", "Import assignments from an export file")
	importFile = importCmd.Arg("file", "Export file path").Required().ExistingFile()

	archivesCmd = app.Command("archives", "List archived snapshots")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == serveCmd.FullCommand() {
		runServe()
		return
	}

	ctx := context.Background()
	c := client.New(*addr)

	var err error
	switch command {
	case createCmd.FullCommand():
		err = runCreate(ctx, c)
	case listCmd.FullCommand():
		err = runList(ctx, c)
	case showCmd.FullCommand():
		err = runShow(ctx, c)
	case updateCmd.FullCommand():
		err = runUpdate(ctx, c)
	case reportCmd.FullCommand():
		err = runReport(ctx, c)
	case exportCmd.FullCommand():
		err = runExport(ctx, c)
	case importCmd.FullCommand():
		err = runImport(ctx, c)
	case archivesCmd.FullCommand():
		err = runArchives(ctx, c)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	storageEnv := config.StorageEnvFromEnv(env)
	var store storage.Storage
	switch storageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), storageEnv.S3Bucket, storageEnv.S3Prefix, storageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(storageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	bus := eventbus.New()
	srv := server.NewServer(
		config.BaseEnvFromEnv(env),
		assignment.NewStore(),
		snapshot.NewArchiver(store),
		bus,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		eventbus.NewLogger(bus, slog.Default()).Run(ctx)
	})
	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	wg.Wait()
}

func runCreate(ctx context.Context, c *client.Client) error {
	due, err := assignment.ParseDate(*createDue)
	if err != nil {
		return fmt.Errorf("invalid due date: %w", err)
	}

	created, err := c.CreateAssignment(ctx, assignment.CreateRequest{
		Title:          *createTitle,
		AssignedTo:     assignment.Engineer(*createEngineer),
		Priority:       assignment.Priority(*createPriority),
		Category:       assignment.Category(*createCategory),
		Description:    *createDescription,
		Deliverables:   *createDeliverables,
		DueDate:        due,
		EstimatedHours: *createHours,
	})
	if err != nil {
		return err
	}
	color.Green("Created assignment #%d: %s", created.ID, created.Title)
	return nil
}

func runList(ctx context.Context, c *client.Client) error {
	list, err := c.ListAssignments(ctx, assignment.Filter{
		Engineer: assignment.Engineer(*listEngineer),
		Status:   assignment.Status(*listStatus),
		Priority: assignment.Priority(*listPriority),
	})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No assignments found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tENGINEER\tPRIORITY\tSTATUS\tDUE\tPROGRESS")
	for _, a := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
			a.ID, a.Title, a.AssignedTo,
			colorPriority(a.Priority), colorStatus(a.Status),
			a.DueDate, a.Progress)
	}
	return w.Flush()
}

func runShow(ctx context.Context, c *client.Client) error {
	a, err := c.GetAssignment(ctx, *showID)
	if err != nil {
		return err
	}
	switch *showFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	default:
		return yaml.NewEncoder(os.Stdout).Encode(a)
	}
}

func runUpdate(ctx context.Context, c *client.Client) error {
	req := assignment.UpdateRequest{ID: *updateID, Comment: *updateComment}
	if *updateStatus != "" {
		st := assignment.Status(*updateStatus)
		req.Status = &st
	}
	if *updateProgress >= 0 {
		req.Progress = updateProgress
	}
	if *updateHours >= 0 {
		req.ActualHours = updateHours
	}

	updated, err := c.UpdateAssignment(ctx, req)
	if err != nil {
		return err
	}
	color.Green("Updated assignment #%d: %s (%s, %d%%)",
		updated.ID, updated.Title, updated.Status, updated.Progress)
	return nil
}

func runReport(ctx context.Context, c *client.Client) error {
	d, err := c.GetDashboard(ctx)
	if err != nil {
		return err
	}
	an, err := c.GetAnalytics(ctx)
	if err != nil {
		return err
	}

	color.New(color.Bold).Println("Dashboard")
	fmt.Printf("  Total: %d  Completed: %d  In Progress: %d  Overdue: %s\n",
		d.Summary.Total, d.Summary.Completed, d.Summary.InProgress,
		color.RedString("%d", d.Summary.Overdue))

	if len(d.Workload) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ENGINEER\tTOTAL\tCOMPLETED\tCRITICAL\tPENDING\tCOMPLETION")
		for _, row := range d.Workload {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
				row.Engineer, row.Total, row.Completed, row.CriticalCount, row.Pending, row.CompletionRate)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Println()
	color.New(color.Bold).Println("Analytics")
	for _, m := range an.MonthlyCreated {
		fmt.Printf("  %s: %d created\n", m.Month, m.Count)
	}
	if an.AvgCompletionDays != nil {
		fmt.Printf("  Average completion age: %.1f days\n", *an.AvgCompletionDays)
	}
	if an.TimeEfficiency != nil {
		fmt.Printf("  Time efficiency: %.1f%%\n", *an.TimeEfficiency)
	}
	for _, cr := range an.CategoryCompletion {
		fmt.Printf("  %s: %.1f%% completed\n", cr.Category, cr.Rate)
	}
	return nil
}

func runExport(ctx context.Context, c *client.Client) error {
	name, err := c.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	color.Green("Exported snapshot: %s", name)
	return nil
}

func runImport(ctx context.Context, c *client.Client) error {
	raw, err := os.ReadFile(*importFile)
	if err != nil {
		return err
	}
	n, err := c.ImportSnapshot(ctx, raw)
	if err != nil {
		return err
	}
	color.Green("Imported %d assignments", n)
	return nil
}

func runArchives(ctx context.Context, c *client.Client) error {
	names, err := c.ListArchives(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No archives found.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func colorPriority(p assignment.Priority) string {
	switch p {
	case assignment.PriorityCritical:
		return color.RedString(string(p))
	case assignment.PriorityHigh:
		return color.YellowString(string(p))
	case assignment.PriorityLow:
		return color.GreenString(string(p))
	}
	return string(p)
}

func colorStatus(s assignment.Status) string {
	switch s {
	case assignment.StatusCompleted:
		return color.GreenString(string(s))
	case assignment.StatusInProgress:
		return color.CyanString(string(s))
	case assignment.StatusOnHold:
		return color.YellowString(string(s))
	}
	return string(s)
}

