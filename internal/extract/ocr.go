package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// OCREngine recognizes text in a raster image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// CommandRunner executes an external program, feeding stdin and returning stdout.
type CommandRunner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// TesseractOCR shells out to the tesseract binary.
type TesseractOCR struct {
	Binary string
	Lang   string
	Runner CommandRunner
}

func NewTesseractOCR(binary, lang string) *TesseractOCR {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractOCR{Binary: binary, Lang: lang, Runner: execRunner{}}
}

func (t *TesseractOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	runner := t.Runner
	if runner == nil {
		runner = execRunner{}
	}
	out, err := runner.Run(ctx, bytes.NewReader(image), t.Binary, "stdin", "stdout", "-l", t.Lang)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
