package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mruput.io/application/services/verification"
	"mruput.io/infrastructure/config"
)

// policyView prints durations as text instead of nanoseconds.
type policyView struct {
	MatchThreshold      float64 `json:"matchThreshold"`
	RequiredBlinks      int     `json:"requiredBlinks"`
	ChallengeWindow     string  `json:"challengeWindow"`
	MaxChallengeFrames  int     `json:"maxChallengeFrames"`
	MaxCaptureAttempts  int     `json:"maxCaptureAttempts"`
	StillTimeout        string  `json:"stillTimeout"`
	Liveness            any     `json:"liveness"`
	LocationTimeout     string  `json:"locationTimeout"`
	LocationRetries     int     `json:"locationRetries"`
	MinAccuracyMeters   float64 `json:"minAccuracyMeters"`
	DefaultRadiusMeters float64 `json:"defaultRadiusMeters"`
	RecordTimeout       string  `json:"recordTimeout"`
}

func viewPolicy(p verification.Policy) policyView {
	return policyView{
		MatchThreshold:      p.MatchThreshold,
		RequiredBlinks:      p.RequiredBlinks,
		ChallengeWindow:     p.ChallengeWindow.String(),
		MaxChallengeFrames:  p.MaxChallengeFrames,
		MaxCaptureAttempts:  p.MaxCaptureAttempts,
		StillTimeout:        p.StillTimeout.String(),
		Liveness:            p.Liveness,
		LocationTimeout:     p.LocationTimeout.String(),
		LocationRetries:     p.LocationRetries,
		MinAccuracyMeters:   p.MinAccuracyMeters,
		DefaultRadiusMeters: p.DefaultRadiusMeters,
		RecordTimeout:       p.RecordTimeout.String(),
	}
}

func newPolicyCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective verification policy",
		Long:  "Print the policy built from defaults, POLICY_FILE and POLICY_* variables. With --check only validate it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := config.LoadPolicy()
			if err != nil {
				return err
			}
			if check {
				fmt.Fprintln(cmd.OutOrStdout(), "policy is valid")
				return nil
			}
			raw, err := json.MarshalIndent(viewPolicy(policy), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "only validate the policy")
	return cmd
}
