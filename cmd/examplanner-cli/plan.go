package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/examplanner-api/internal/allocation"
	"github.com/noah-isme/examplanner-api/internal/models"
)

// snapshotFile is the planner input: master data plus the exams to plan.
type snapshotFile struct {
	Students     []models.Student     `yaml:"students"`
	Classrooms   []models.Classroom   `yaml:"classrooms"`
	Invigilators []models.Invigilator `yaml:"invigilators"`
	Exams        []models.ExamSlot    `yaml:"exams"`
}

// planFile is the planner output. Classrooms are echoed so verify can check
// capacities without the original snapshot.
type planFile struct {
	GeneratedAt  time.Time                 `yaml:"generated_at"`
	Options      planOptions               `yaml:"options"`
	Classrooms   []models.Classroom        `yaml:"classrooms"`
	Sessions     []models.SessionAllotment `yaml:"sessions"`
	Invigilators []models.Invigilator      `yaml:"invigilators"`
	Summary      models.PlanTotals         `yaml:"summary"`
}

type planOptions struct {
	SortByRollNumber bool   `yaml:"sort_by_roll_number"`
	HeadcountBasis   string `yaml:"headcount_basis"`
}

func newPlanCmd(app *cliContext) *cobra.Command {
	var (
		input     string
		output    string
		sortRoll  bool
		headcount string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan seats and invigilators for every session in a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := allocation.Options{
				SortByRollNumber: app.cfg.Allotment.SortByRollNumber,
				HeadcountBasis:   allocation.ParseHeadcountBasis(app.cfg.Allotment.HeadcountBasis),
			}
			if cmd.Flags().Changed("sort-roll") {
				opts.SortByRollNumber = sortRoll
			}
			if cmd.Flags().Changed("headcount") {
				if headcount != string(allocation.HeadcountSeated) && headcount != string(allocation.HeadcountCapacity) {
					return fmt.Errorf("--headcount must be %q or %q", allocation.HeadcountSeated, allocation.HeadcountCapacity)
				}
				opts.HeadcountBasis = allocation.HeadcountBasis(headcount)
			}

			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer in.Close() //nolint:errcheck

			// Buffered so a failed run never leaves a partial plan file.
			var buf bytes.Buffer
			plan, err := runPlan(in, &buf, opts, time.Now().UTC())
			if err != nil {
				app.logger.Error("planning failed", zap.String("input", input), zap.Error(err))
				return err
			}
			if output == "" {
				if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
			} else if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			app.logger.Info("plan generated",
				zap.String("input", input),
				zap.Int("sessions", plan.Summary.Sessions),
				zap.Int("seated", plan.Summary.Seated),
				zap.Int("unseated", plan.Summary.Unseated),
				zap.Int("short_staffed_rooms", plan.Summary.ShortStaffedRooms),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "snapshot YAML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan here instead of stdout")
	cmd.Flags().BoolVar(&sortRoll, "sort-roll", true, "order candidates by roll number before seating")
	cmd.Flags().StringVar(&headcount, "headcount", string(allocation.HeadcountSeated), "invigilator sizing basis: seated or capacity")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runPlan(in io.Reader, out io.Writer, opts allocation.Options, now time.Time) (*planFile, error) {
	var snapshot snapshotFile
	if err := yaml.NewDecoder(in).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snapshot.Exams) == 0 {
		return nil, fmt.Errorf("%w: snapshot lists no exams", allocation.ErrInputInconsistency)
	}

	result, err := allocation.PlanSessions(allocation.Snapshot{
		Students:     snapshot.Students,
		Classrooms:   snapshot.Classrooms,
		Invigilators: snapshot.Invigilators,
	}, snapshot.Exams, opts)
	if err != nil {
		return nil, err
	}

	plan := &planFile{
		GeneratedAt:  now,
		Options:      planOptions{SortByRollNumber: opts.SortByRollNumber, HeadcountBasis: string(opts.HeadcountBasis)},
		Classrooms:   snapshot.Classrooms,
		Sessions:     result.Sessions,
		Invigilators: result.Snapshot.Invigilators,
		Summary:      models.SummarizeSessions(result.Sessions),
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	return plan, nil
}
