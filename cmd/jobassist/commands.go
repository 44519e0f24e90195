package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/jobassist/internal/config"
	"github.com/kalambet/jobassist/internal/contract"
	"github.com/kalambet/jobassist/internal/shell"
)

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <role>",
	Short: "Run one job search against the backend and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		sh := shell.New(newSearchClient(cfg), slog.Default())
		role := strings.Join(args, " ")

		printStep("Searching %q...", role)
		if err := sh.Submit(cmd.Context(), role, location); err != nil {
			var verr *contract.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("role is required")
			}
			return errors.New(shell.FailureMessage)
		}

		result := sh.Snapshot().Result
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		writeResult(cmd.OutOrStdout(), *result)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("location", "", "optional location filter")
	searchCmd.Flags().Bool("json", false, "print the raw result as JSON")
}

func writeResult(w io.Writer, r contract.Result) {
	title := r.Role
	if r.Location != "" {
		title += " in " + r.Location
	}
	fmt.Fprintln(w, colorize(colorBold, title))
	if r.Overview.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", r.Overview.Summary)
	}

	fmt.Fprintf(w, "\n%s\n", colorize(colorBold, fmt.Sprintf("%d Live Links", r.TotalJobs)))
	for _, j := range r.Jobs {
		fmt.Fprintf(w, "  %s: %s\n    %s\n", j.Company, j.Title, j.URL)
	}

	writeList(w, "Technical skills", r.Skills.Technical)
	writeList(w, "Tools", r.Skills.Tools)
	writeList(w, "Soft skills", r.Skills.NonTechnical)
	writeList(w, "Interview topics", r.Roadmap.InterviewTopics)

	stages := []struct {
		title string
		steps []contract.RoadmapStep
	}{
		{"Fundamentals", r.Roadmap.Fundamentals},
		{"Advanced Proficiency", r.Roadmap.Advanced},
		{"Hands-on Projects", r.Roadmap.Projects},
	}
	for i, s := range stages {
		if len(s.steps) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", colorize(colorBold, fmt.Sprintf("%d. %s", i+1, s.title)))
		for n, step := range s.steps {
			fmt.Fprintf(w, "  Step %d: %s\n", n+1, step.Topic)
			for _, v := range step.Videos {
				fmt.Fprintf(w, "    - %s (%s)\n", v.Title, v.URL)
			}
		}
	}
}

func writeList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s: %s\n", colorize(colorBold, label), strings.Join(items, ", "))
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show front-end and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := newAPIClient(cfg).get(ctx, "/health")
	if err != nil {
		printStatus("Front-end", "stopped")
	} else {
		var health struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(resp, &health); err != nil {
			printStatus("Front-end", "error (%v)", err)
		} else {
			printStatus("Front-end", "running on http://%s", cfg.Addr())
		}
	}

	if err := newSearchClient(cfg).Ping(ctx); err != nil {
		printStatus("Backend", "unreachable at %s (%v)", cfg.Backend.BaseURL, err)
	} else {
		printStatus("Backend", "running at %s", cfg.Backend.BaseURL)
	}

	printStatus("Envelope depth", "%d", cfg.Backend.EnvelopeDepth)
	printStatus("Config file", "%s", config.FilePath())
	return nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			printWarning("valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobassist version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jobassist version %s\n", version)
	},
}
