package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/enhance"
	"resume-builder/internal/model"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var jobFile, resumeFile string
	var candidateFiles []string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract skills, experience and recommendations from a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := os.ReadFile(jobFile)
			if err != nil {
				return fmt.Errorf("read job description: %w", err)
			}
			c, err := root.build()
			if err != nil {
				return err
			}

			out := struct {
				enhance.JobAnalysis
				Match   *enhance.ResumeMatch      `json:"match,omitempty"`
				Ranking *enhance.CandidateRanking `json:"ranking,omitempty"`
			}{JobAnalysis: c.Heuristic.AnalyzeJob(string(job))}

			if resumeFile != "" {
				raw, err := os.ReadFile(resumeFile)
				if err != nil {
					return fmt.Errorf("read resume: %w", err)
				}
				rec, err := c.Pipeline.ParseJSON(cmd.Context(), raw)
				if err != nil {
					return err
				}
				m := c.Heuristic.MatchResume(string(job), rec)
				out.Match = &m
			}

			if len(candidateFiles) > 0 {
				recs := make([]*model.ResumeRecord, 0, len(candidateFiles))
				for _, f := range candidateFiles {
					raw, err := os.ReadFile(f)
					if err != nil {
						return fmt.Errorf("read resume: %w", err)
					}
					rec, err := c.Pipeline.ParseJSON(cmd.Context(), raw)
					if err != nil {
						return fmt.Errorf("%s: %w", f, err)
					}
					recs = append(recs, rec)
				}
				r := c.Heuristic.RankCandidates(string(job), recs)
				out.Ranking = &r
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&jobFile, "job", "j", "", "job description text file")
	cmd.Flags().StringVarP(&resumeFile, "resume", "r", "", "optional JSON resume to score against the job")
	cmd.Flags().StringSliceVar(&candidateFiles, "resumes", nil, "JSON resumes to rank against the job (comma separated or repeated)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
