package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lendnova-backend/internal/assessments"
	"lendnova-backend/internal/documents"
	"lendnova-backend/internal/events"
	"lendnova-backend/internal/lock"
	"lendnova-backend/internal/scoring"
	localstore "lendnova-backend/internal/shared/storage/object/local"
)

const offlineOwner = "lendctl"

type scoredDocument struct {
	Type           string `json:"type"`
	File           string `json:"file"`
	Valid          bool   `json:"valid"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
}

type scoreReport struct {
	Produced          bool                   `json:"produced"`
	ValidDocuments    int                    `json:"validDocuments"`
	RequiredDocuments int                    `json:"requiredDocuments"`
	Documents         []scoredDocument       `json:"documents"`
	Rejected          []documents.Rejection  `json:"rejected"`
	Decision          *assessmentDecisionOut `json:"decision"`
}

type assessmentDecisionOut struct {
	FraudScore     int      `json:"fraudScore"`
	CreditScore    int      `json:"creditScore"`
	RiskLevel      string   `json:"riskLevel"`
	EligibleAmount int      `json:"eligibleAmount"`
	Insights       string   `json:"insights"`
	Flags          []string `json:"flags"`
}

func newScoreCmd(opts *globalOptions) *cobra.Command {
	var docs []string
	cmd := &cobra.Command{
		Use:   "score --doc <type>=<file> [--doc ...]",
		Short: "Run the full pipeline over a set of documents and print the decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(docs) == 0 {
				return fmt.Errorf("at least one --doc is required")
			}
			uploads := make([]documents.Upload, 0, len(docs))
			for _, spec := range docs {
				label, path, ok := strings.Cut(spec, "=")
				if !ok || label == "" || path == "" {
					return fmt.Errorf("invalid --doc %q, want type=path", spec)
				}
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				uploads = append(uploads, documents.Upload{Label: label, FileName: filepath.Base(path), Content: content})
			}

			validator, err := opts.validator()
			if err != nil {
				return err
			}
			storeDir, err := os.MkdirTemp("", "lendctl-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(storeDir)

			ctx := commandContext(cmd)
			docSvc := &documents.Service{
				Store:           localstore.New(storeDir),
				Repo:            documents.NewMemoryRepo(),
				Extractor:       opts.extractor(),
				Validator:       validator,
				StorageProvider: "local",
			}
			ingested, err := docSvc.Ingest(ctx, offlineOwner, uploads)
			if err != nil {
				return err
			}

			svc := &assessments.Service{
				Docs:   docSvc,
				Repo:   assessments.NewMemoryRepo(),
				Locker: lock.NewMemory(),
				Policy: scoring.DefaultPolicy(),
				Events: events.NopPublisher{},
			}
			out, err := svc.Run(ctx, offlineOwner)
			if err != nil {
				return err
			}

			report := scoreReport{
				Produced:          out.Produced,
				ValidDocuments:    out.ValidDocuments,
				RequiredDocuments: out.Required,
				Documents:         make([]scoredDocument, 0, len(ingested.Documents)),
				Rejected:          ingested.Rejected,
			}
			for _, doc := range ingested.Documents {
				report.Documents = append(report.Documents, scoredDocument{
					Type:           string(doc.Type),
					File:           doc.FileName,
					Valid:          doc.IsValid,
					MatchedKeyword: doc.MatchedKeyword,
				})
			}
			if out.Produced {
				a := out.Assessment
				report.Decision = &assessmentDecisionOut{
					FraudScore:     a.FraudScore,
					CreditScore:    a.CreditScore,
					RiskLevel:      string(a.RiskLevel),
					EligibleAmount: a.EligibleAmount,
					Insights:       a.Insights,
					Flags:          a.Flags,
				}
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "document as type=path; repeatable")
	return cmd
}
