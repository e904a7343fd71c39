package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
)

type Adapter struct {
	bin  string
	lang string
}

func New(binPath, lang string) *Adapter {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Adapter{bin: binPath, lang: lang}
}

// Recognize writes img to a temporary PNG and returns tesseract's stdout.
func (a *Adapter) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	f, err := os.CreateTemp("", "viralcut-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create ocr input: %w", err)
	}
	defer os.Remove(f.Name())
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode ocr input: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close ocr input: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.bin, a.args(f.Name())...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w\n%s", err, stderr.String())
	}
	return stdout.String(), nil
}

func (a *Adapter) args(input string) []string {
	args := []string{input, "stdout"}
	if a.lang != "" {
		args = append(args, "-l", a.lang)
	}
	return args
}
