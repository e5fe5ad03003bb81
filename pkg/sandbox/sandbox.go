package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"code_mentor_backend/internal/config"
)

// Runner executes a piece of submitted code against a single stdin and
// returns whatever it wrote to stdout. Implementations must be safe for
// concurrent use; each Run call is fully isolated.
type Runner interface {
	Run(ctx context.Context, language, code, stdin string) (*RunResult, error)
}

// RunResult is the outcome of one sandboxed execution.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

var (
	// ErrTimeout indicates the execution exceeded its wall-clock budget.
	ErrTimeout = errors.New("sandbox: execution timed out")
	// ErrUnsupportedLanguage indicates no interpreter is configured for the language.
	ErrUnsupportedLanguage = errors.New("sandbox: unsupported language")
)

// New selects a runner from config.
func New(cfg *config.SandboxConfig) Runner {
	if cfg.Type == "judge0" {
		return NewJudge0Runner(cfg)
	}
	return NewExecRunner(cfg)
}

// ExecRunner runs submissions through a local interpreter with an enforced
// wall-clock timeout. Intended for development and single-node deployments;
// production setups should point SandboxConfig at a judge0 service instead.
type ExecRunner struct {
	workDir     string
	interpreter string
	timeout     time.Duration
	maxOutput   int
}

func NewExecRunner(cfg *config.SandboxConfig) *ExecRunner {
	interpreter := cfg.LocalInterpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	return &ExecRunner{
		workDir:     cfg.LocalWorkDir,
		interpreter: interpreter,
		timeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		maxOutput:   cfg.MaxOutputBytes,
	}
}

// 本地执行仅支持解释型语言，编译型语言必须走 judge0
var sourceFiles = map[string]string{
	"python": "main.py",
	"js":     "main.js",
}

func (r *ExecRunner) Run(ctx context.Context, language, code, stdin string) (*RunResult, error) {
	filename, ok := sourceFiles[language]
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	tmpDir, err := os.MkdirTemp(r.workDir, "sandbox-run-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	srcPath := filepath.Join(tmpDir, filename)
	if err := os.WriteFile(srcPath, []byte(code), 0644); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.interpreter, srcPath)
	cmd.Dir = tmpDir
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, ErrTimeout
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, err
		}
	}

	return &RunResult{
		Stdout:   truncate(stdout.String(), r.maxOutput),
		Stderr:   truncate(stderr.String(), r.maxOutput),
		ExitCode: exitCode,
		Duration: elapsed,
	}, nil
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
