package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/types"
)

type Adapter struct {
	bin    string
	model  string
	lang   string
	logger zerolog.Logger
}

func New(logger zerolog.Logger, binPath, modelPath, lang string) *Adapter {
	return &Adapter{
		bin:    binPath,
		model:  modelPath,
		lang:   lang,
		logger: logger.With().Str("component", "whispercpp").Logger(),
	}
}

// Transcribe runs whisper.cpp on wavPath and reads its JSON output from cacheDir.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := a.args(wavPath, outPrefix)
	a.logger.Debug().Strs("args", args).Msg("executing whisper.cpp")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return parseTranscript(jb)
}

func (a *Adapter) args(wavPath, outPrefix string) []string {
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if a.lang != "" {
		args = append(args, "-l", a.lang)
	}
	return args
}

func parseTranscript(jb []byte) (types.Transcript, error) {
	var tr types.Transcript
	if err := json.Unmarshal(jb, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper json: %w", err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
		for j := range tr.Segments[i].Words {
			tr.Segments[i].Words[j].Word = strings.TrimSpace(tr.Segments[i].Words[j].Word)
		}
	}
	return tr, nil
}
