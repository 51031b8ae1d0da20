// Package sandbox extracts fenced code blocks from model output and runs
// them against an external execution service (Piston).
package sandbox

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/httpx"
)

// CodeBlock is one fenced region in document order.
type CodeBlock struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Raw      string `json:"raw"`
}

// ExecutionResult is the normalized outcome of one block.
type ExecutionResult struct {
	Succeeded bool   `json:"succeeded"`
	Output    string `json:"output"` // stdout/stderr merged
	ExitCode  int    `json:"exit_code"`
	Language  string `json:"language"`
	Elapsed   string `json:"elapsed"`
}

// languageVersions maps a fence tag to the runtime the execution service
// expects. Unlisted languages fall back to python.
var languageVersions = map[string]struct{ Language, Version string }{
	"python":     {"python", "3.10.0"},
	"javascript": {"javascript", "18.15.0"},
	"java":       {"java", "15.0.2"},
	"cpp":        {"cpp", "10.2.0"},
	"c":          {"c", "10.2.0"},
	"go":         {"go", "1.16.2"},
	"rust":       {"rust", "1.68.2"},
}

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9+#._-]*)[ \t]*\n(.*?)```")

// ExtractCodeBlocks scans text for fenced code regions. The language tag is
// optional; fallback fills it in. Zero blocks yields an empty slice, not an
// error.
func ExtractCodeBlocks(text, fallback string) []CodeBlock {
	if fallback == "" {
		fallback = "python"
	}
	blocks := []CodeBlock{}
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		lang := strings.ToLower(m[1])
		if lang == "" {
			lang = fallback
		}
		source := strings.TrimSpace(m[2])
		if source == "" {
			continue
		}
		blocks = append(blocks, CodeBlock{Language: lang, Source: source, Raw: m[0]})
	}
	return blocks
}

// Runner executes code blocks against the configured sandbox service.
type Runner struct {
	cfg  config.SandboxConfig
	http *httpx.Client
}

func NewRunner(cfg config.SandboxConfig) *Runner {
	return &Runner{
		cfg:  cfg,
		http: httpx.NewClient(cfg.Timeout, 1, 300*time.Millisecond),
	}
}

type pistonRequest struct {
	Language           string       `json:"language"`
	Version            string       `json:"version"`
	Files              []pistonFile `json:"files"`
	Stdin              string       `json:"stdin"`
	CompileTimeout     int          `json:"compile_timeout"`
	RunTimeout         int          `json:"run_timeout"`
	CompileMemoryLimit int          `json:"compile_memory_limit"`
	RunMemoryLimit     int          `json:"run_memory_limit"`
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Code   int    `json:"code"`
	} `json:"run"`
}

// Execute runs a single block. Failures are captured in the result rather
// than returned, so one bad block never aborts the rest.
func (r *Runner) Execute(ctx context.Context, block CodeBlock) ExecutionResult {
	runtime, ok := languageVersions[block.Language]
	if !ok {
		runtime = languageVersions["python"]
	}

	req := pistonRequest{
		Language:           runtime.Language,
		Version:            runtime.Version,
		Files:              []pistonFile{{Content: block.Source}},
		CompileTimeout:     r.cfg.CompileTimeoutMS,
		RunTimeout:         r.cfg.RunTimeoutMS,
		CompileMemoryLimit: -1,
		RunMemoryLimit:     -1,
	}

	start := time.Now()
	var resp pistonResponse
	if err := r.http.PostJSON(ctx, r.cfg.BaseURL+"/execute", nil, req, &resp); err != nil {
		return ExecutionResult{
			Succeeded: false,
			Output:    err.Error(),
			ExitCode:  1,
			Language:  block.Language,
			Elapsed:   time.Since(start).String(),
		}
	}

	output := resp.Run.Stdout
	if output == "" {
		output = resp.Run.Stderr
	}
	if output == "" {
		output = "No output"
	}
	return ExecutionResult{
		Succeeded: resp.Run.Code == 0,
		Output:    output,
		ExitCode:  resp.Run.Code,
		Language:  block.Language,
		Elapsed:   time.Since(start).String(),
	}
}

// ExecuteAll extracts and executes every block in text. It returns nil, not
// an empty slice, when text has no fenced blocks; callers use that to skip
// the execution phase entirely.
func (r *Runner) ExecuteAll(ctx context.Context, text string) []ExecutionResult {
	blocks := ExtractCodeBlocks(text, r.cfg.FallbackLanguage)
	if len(blocks) == 0 {
		return nil
	}
	results := make([]ExecutionResult, 0, len(blocks))
	for _, block := range blocks {
		results = append(results, r.Execute(ctx, block))
	}
	return results
}
