//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 30 * time.Second

type robustCase struct {
	name            string
	args            func(t *testing.T, repoRoot string) []string
	env             map[string]string
	wantContains    []string
	wantNotContains []string
}

type cliRunResult struct {
	exitCode int
	output   string
}

func TestRobustness_ArgsValidation(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "no args",
			args: staticArgs(),
			wantContains: []string{
				"accepts 1 arg(s), received 0",
			},
		},
		{
			name: "too many args",
			args: staticArgs("cats", "extra"),
			wantContains: []string{
				"accepts 1 arg(s), received 2",
			},
		},
		{
			name: "unknown flag",
			args: staticArgs("cats", "--wat"),
			wantContains: []string{
				"unknown flag: --wat",
			},
		},
		{
			name: "top non int",
			args: staticArgs("cats", "--top", "nope"),
			wantContains: []string{
				`invalid argument "nope" for "--top"`,
			},
		},
		{
			name: "max results zero",
			args: staticArgs("cats", "--max-results", "0"),
			wantContains: []string{
				"config: max-results must be > 0",
			},
		},
		{
			name: "unknown provider from env",
			args: staticArgs("cats"),
			env: map[string]string{
				"VIRALCUT_SEARCH_PROVIDER": "bing",
			},
			wantContains: []string{
				`unknown search provider "bing"`,
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func TestRobustness_RunFailures(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "bad caption file",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				p := filepath.Join(t.TempDir(), "caps.yaml")
				if err := os.WriteFile(p, []byte("- {text: x, start: 5, end: 1}\n"), 0o644); err != nil {
					t.Fatalf("write caption fixture: %v", err)
				}
				return []string{"cats", "--captions", p, "--out", t.TempDir()}
			},
			wantContains: []string{
				"start 5.000 >= end 1.000",
			},
		},
		{
			name: "out points to file",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				tmp := t.TempDir()
				outFile := filepath.Join(tmp, "out-file")
				if err := os.WriteFile(outFile, []byte("x"), 0o644); err != nil {
					t.Fatalf("write out file fixture: %v", err)
				}
				return []string{"cats", "--out", outFile}
			},
			wantContains: []string{
				"not a directory",
			},
		},
		{
			name: "unreachable search page",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				cfg := filepath.Join(t.TempDir(), "viralcut.yaml")
				body := "search:\n  provider: html\n  html:\n    url_template: http://127.0.0.1:1/results?q={query}\n"
				if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
					t.Fatalf("write config fixture: %v", err)
				}
				return []string{"cats", "--config", cfg, "--out", t.TempDir()}
			},
			wantContains: []string{
				"search: request results:",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func runRobustCases(t *testing.T, repoRoot string, cases []robustCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, repoRoot, tc.args(t, repoRoot), tc.env)
			if res.exitCode == 0 {
				t.Fatalf("expected non-zero exit code, got 0\noutput:\n%s", res.output)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(res.output, want) {
					t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
				}
			}
			for _, notWant := range tc.wantNotContains {
				if strings.Contains(res.output, notWant) {
					t.Fatalf("expected output to not contain %q\noutput:\n%s", notWant, res.output)
				}
			}
		})
	}
}

func runCLI(t *testing.T, repoRoot string, args []string, env map[string]string) cliRunResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmdArgs := append([]string{"run", "./cmd/viralcut"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(
		os.Environ(),
		map[string]string{
			"NO_COLOR": "1",
			"TERM":     "dumb",
		},
		env,
	)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", cliTimeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{output: string(out)}
	if err == nil {
		res.exitCode = 0
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}

	t.Fatalf("run command: %v\noutput:\n%s", err, string(out))
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}

	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

func mustRepoRoot(t *testing.T) string {
	t.Helper()

	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	return repoRoot
}

func staticArgs(args ...string) func(t *testing.T, _ string) []string {
	clone := append([]string(nil), args...)
	return func(t *testing.T, _ string) []string {
		t.Helper()
		return append([]string(nil), clone...)
	}
}
