package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hivemind/hive"
	"github.com/lexcodex/hivemind/internal/hivectl/runtime"
)

var (
	flagConfig string
	flagAgent  string
	flagModel  string
	flagOracle string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hivectl",
		Short: "Mission orchestration for the hivemind engine",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", envOrDefault("HIVEMIND_CONFIG", ""), "Path to a YAML config file")
	root.PersistentFlags().StringVar(&flagAgent, "agent", "", "Agent id to act as (default: first configured agent)")
	root.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("HIVEMIND_MODEL", ""), "Override the oracle model")
	root.PersistentFlags().StringVar(&flagOracle, "oracle", envOrDefault("HIVEMIND_ORACLE_URL", ""), "Override the oracle base URL")

	root.AddCommand(newMissionCmd(), newCatalogCmd(), newAgentsCmd(), newPostCmd())
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadRuntime(feedback hive.FeedbackGate) (*runtime.Runtime, error) {
	cfg, err := runtime.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.OracleModel = flagModel
	}
	if flagOracle != "" {
		cfg.OracleBaseURL = flagOracle
	}
	return runtime.New(cfg, feedback)
}

func newMissionCmd() *cobra.Command {
	missionCmd := &cobra.Command{Use: "mission", Short: "Run missions and inspect history"}

	var goal string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Plan and execute a mission for the given goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goal == "" {
				return errors.New("goal is required")
			}
			rt, err := loadRuntime(terminalGate(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()
			orch, err := rt.Orchestrator(flagAgent)
			if err != nil {
				return err
			}
			report, err := orch.ExecuteMission(cmd.Context(), goal)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	runCmd.Flags().StringVarP(&goal, "goal", "g", "", "Mission goal (required)")

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent persisted missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			missions, err := rt.Store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, m := range missions {
				result := m.Result
				if result == nil {
					result = m.Tally()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d/%d steps\t%s\n",
					m.ID, m.Status, result.SuccessfulSteps, result.TotalSteps,
					m.Timestamp.Format(time.RFC3339))
			}
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of missions to show")

	missionCmd.AddCommand(runCmd, historyCmd)
	return missionCmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the capability catalog handed to the planner",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			orch, err := rt.Orchestrator(flagAgent)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(orch.Catalog())
		},
	}
}

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List configured agent ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			for _, id := range rt.Agents.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newPostCmd() *cobra.Command {
	var to string
	var task string
	var paramsJSON string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Drop a task message into an agent mailbox and run its mailbox goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" || task == "" {
				return errors.New("--to and --task are required")
			}
			rt, err := loadRuntime(terminalGate(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()
			orch, err := rt.Orchestrator(to)
			if err != nil {
				return err
			}
			payload := map[string]any{"task": task}
			if paramsJSON != "" {
				var params map[string]any
				if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
					return fmt.Errorf("parse --params: %w", err)
				}
				payload["params"] = params
			}
			sender := flagAgent
			if sender == "" {
				sender = rt.Config.Agents[0]
			}
			rt.Bus.Send(to, sender, payload)
			report, err := orch.ExecuteMission(cmd.Context(), hive.MailboxGoal)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient agent id (required)")
	cmd.Flags().StringVar(&task, "task", "", "Task name for the message payload (required)")
	cmd.Flags().StringVar(&paramsJSON, "params", "", "Task parameters as a JSON object")
	return cmd
}
