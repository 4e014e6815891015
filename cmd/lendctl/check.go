package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lendnova-backend/internal/doctype"
)

type checkResult struct {
	File           string `json:"file"`
	Type           string `json:"type"`
	Valid          bool   `json:"valid"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
	Extraction     string `json:"extractionError,omitempty"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var (
		typeName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "check --type <document_type> <file>",
		Short: "Extract and validate a single document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := doctype.Parse(typeName)
			if err != nil {
				return err
			}
			path := args[0]
			kind, err := doctype.KindFromFileName(filepath.Base(path))
			if err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			validator, err := opts.validator()
			if err != nil {
				return err
			}

			res := opts.extractor().Extract(commandContext(cmd), content, kind)
			verdict := validator.Validate(t, res)
			out := checkResult{
				File:           path,
				Type:           string(t),
				Valid:          verdict.Valid,
				MatchedKeyword: verdict.MatchedKeyword,
				Extraction:     res.Reason(),
			}

			if asJSON {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			switch {
			case out.Valid:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s (matched %q)\n", path, t, out.MatchedKeyword)
			case out.Extraction != "":
				fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid %s (extraction failed: %s)\n", path, t, out.Extraction)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid %s (no keyword matched)\n", path, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "document type, e.g. bank_statement")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the verdict as JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
