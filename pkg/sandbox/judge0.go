package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"code_mentor_backend/internal/config"
)

// judge0 language ids for the languages the problem generator emits
var judge0Languages = map[string]int{
	"c":      50,
	"python": 71,
	"js":     63,
	"go":     60,
}

// Judge0Runner executes code through a Judge0-compatible HTTP API using
// synchronous (wait=true) submissions.
type Judge0Runner struct {
	url     string
	host    string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewJudge0Runner(cfg *config.SandboxConfig) *Judge0Runner {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	return &Judge0Runner{
		url:     cfg.URL,
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		// HTTP 超时要覆盖排队与执行，放宽到执行预算的三倍
		client: &http.Client{Timeout: 3 * timeout},
	}
}

type judge0Request struct {
	SourceCode string  `json:"source_code"`
	LanguageID int     `json:"language_id"`
	Stdin      string  `json:"stdin"`
	CPUTime    float64 `json:"cpu_time_limit"`
}

type judge0Response struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	ExitCode      int    `json:"exit_code"`
	Time          string `json:"time"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// judge0 status ids: 3 = accepted, 5 = time limit exceeded
const (
	judge0StatusAccepted = 3
	judge0StatusTimeout  = 5
)

func (r *Judge0Runner) Run(ctx context.Context, language, code, stdin string) (*RunResult, error) {
	langID, ok := judge0Languages[language]
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	body, err := json.Marshal(judge0Request{
		SourceCode: code,
		LanguageID: langID,
		Stdin:      stdin,
		CPUTime:    r.timeout.Seconds(),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.url+"/submissions?base64_encoded=false&wait=true", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", r.apiKey)
		req.Header.Set("X-RapidAPI-Host", r.host)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("sandbox: judge0 returned status %d", resp.StatusCode)
	}

	var out judge0Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	if out.Status.ID == judge0StatusTimeout {
		return nil, ErrTimeout
	}

	exitCode := out.ExitCode
	if out.Status.ID != judge0StatusAccepted && exitCode == 0 {
		exitCode = 1
	}

	return &RunResult{
		Stdout:   out.Stdout,
		Stderr:   out.Stderr + out.CompileOutput,
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}
