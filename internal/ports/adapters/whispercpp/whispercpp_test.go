package whispercpp

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseTranscript_TrimsText(t *testing.T) {
	tr, err := parseTranscript([]byte(`{"segments":[{"start":0,"end":1.5,"text":"  olá mundo ","words":[{"start":0,"end":0.5,"word":" olá"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Segments[0].Text != "olá mundo" || tr.Segments[0].Words[0].Word != "olá" {
		t.Fatalf("unexpected transcript: %+v", tr)
	}
}

func TestParseTranscript_Invalid(t *testing.T) {
	if _, err := parseTranscript([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestArgs_Language(t *testing.T) {
	a := New(zerolog.Nop(), "whisper", "model.bin", "pt")
	args := a.args("a.wav", "out/whisper")
	if args[len(args)-2] != "-l" || args[len(args)-1] != "pt" {
		t.Fatalf("expected language flag, got %v", args)
	}
}
