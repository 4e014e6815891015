package main

import (
	"context"

	"github.com/spf13/cobra"

	"lendnova-backend/internal/extract"
	"lendnova-backend/internal/shared/telemetry"
	"lendnova-backend/internal/validation"
)

type globalOptions struct {
	keywordsFile string
	ocrBinary    string
	ocrLang      string
	logLevel     string
}

// newOCR is swapped in tests.
var newOCR = func(binary, lang string) extract.OCREngine {
	return extract.NewTesseractOCR(binary, lang)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "lendctl",
		Short:         "Audit lending documents offline",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.Init(opts.logLevel, "console")
		},
	}
	root.PersistentFlags().StringVar(&opts.keywordsFile, "keywords", "", "YAML keyword table (defaults to the built-in table)")
	root.PersistentFlags().StringVar(&opts.ocrBinary, "ocr-binary", "tesseract", "OCR binary used for images")
	root.PersistentFlags().StringVar(&opts.ocrLang, "ocr-lang", "eng", "OCR language")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newCheckCmd(opts), newScoreCmd(opts))
	return root
}

func (o *globalOptions) validator() (*validation.Validator, error) {
	if o.keywordsFile == "" {
		return validation.NewValidator(validation.DefaultKeywordTable()), nil
	}
	table, err := validation.LoadKeywordTable(o.keywordsFile)
	if err != nil {
		return nil, err
	}
	return validation.NewValidator(table), nil
}

func (o *globalOptions) extractor() *extract.Extractor {
	return extract.New(newOCR(o.ocrBinary, o.ocrLang))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
