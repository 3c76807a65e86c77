package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/healthtwin/backend/internal/domain"
	"github.com/healthtwin/backend/internal/service"
)

const defaultEngineURL = "http://localhost:8005/api/v1"

type engineFlags struct {
	url     string
	timeout time.Duration
	verbose bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	url := os.Getenv("RISK_ENGINE_URL")
	if url == "" {
		url = defaultEngineURL
	}
	cmd.Flags().StringVar(&f.url, "url", url, "Risk engine API base URL")
	cmd.Flags().DurationVar(&f.timeout, "timeout", service.DefaultEngineTimeout, "Deadline for the engine round trip")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log engine failures to stderr")
}

func (f *engineFlags) client() (*service.RiskClient, error) {
	logger := zap.NewNop()
	if f.verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	return service.NewRiskClient(f.url, f.timeout, logger), nil
}

func newFetchCmd() *cobra.Command {
	var (
		flags        engineFlags
		profile      string
		outputFormat string
		thresholds   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a risk snapshot",
		Long: `Fetch a risk snapshot for a built-in profile.

Examples:
  # Dashboard profile, human readable
  riskctl fetch

  # Mobile profile as JSON against a remote engine
  riskctl fetch -p mobile -o json --url https://engine.example.com/api/v1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := service.ParseProfile(profile)
			if err != nil {
				return err
			}
			t, err := service.LoadThresholds(thresholds)
			if err != nil {
				return err
			}
			client, err := flags.client()
			if err != nil {
				return err
			}
			defer client.Close()

			svc := service.NewRiskService(client, service.NewPayloadBuilder(time.Now), nil, t, nil)
			snap, err := svc.Snapshot(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap, outputFormat)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&profile, "profile", "p", string(service.ProfileDashboard), "Payload profile (dashboard, mobile)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&thresholds, "thresholds", os.Getenv("THRESHOLDS_FILE"), "YAML thresholds file")

	return cmd
}

func newPingCmd() *cobra.Command {
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the risk engine is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			if err := client.Health(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s risk engine at %s is up\n", color.GreenString("✓"), flags.url)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printSnapshot(w io.Writer, snap domain.RiskSnapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	case "human":
		printHuman(w, snap)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func printHuman(w io.Writer, snap domain.RiskSnapshot) {
	v := snap.View

	source := color.GreenString("live")
	if snap.Source == domain.SourceFallback {
		source = color.YellowString("fallback")
	}
	fmt.Fprintf(w, "Source:        %s\n", source)

	status := color.GreenString(v.StatusLabel)
	if v.StatusLabel == service.StatusHighRisk {
		status = color.RedString(v.StatusLabel)
	}
	fmt.Fprintf(w, "Status:        %s\n", status)
	fmt.Fprintf(w, "Health score:  %d (%s)\n", v.HealthScore, v.HealthLabel)
	fmt.Fprintf(w, "Cardiac risk:  %d (%s)\n", v.CardiacScore, snap.Cardiac.RiskLevel)
	fmt.Fprintf(w, "Fatigue index: %d (%s)\n", v.FatigueIndex, snap.Fatigue.RiskLevel)
	fmt.Fprintf(w, "Fit to work:   %s\n", v.FitToWorkLabel)

	if len(v.RiskDrivers) > 0 {
		fmt.Fprintf(w, "Risk drivers:\n  - %s\n", strings.Join(v.RiskDrivers, "\n  - "))
	}
}
