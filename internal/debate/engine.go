package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/cache"
	"github.com/roomai/agora/internal/llm"
	"github.com/roomai/agora/internal/sandbox"
	"github.com/roomai/agora/internal/search"
	"github.com/roomai/agora/internal/telemetry"
)

// CompletionProvider is the narrow slice of the model-call adapter the
// engine needs.
type CompletionProvider interface {
	Complete(ctx context.Context, model string, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// Searcher grounds a debate with one search call; nil results mean "search
// unavailable".
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// CodeRunner extracts and executes fenced code blocks; nil means "no blocks
// were found".
type CodeRunner interface {
	ExecuteAll(ctx context.Context, text string) []sandbox.ExecutionResult
}

var engineTracer trace.Tracer = otel.Tracer("agora/internal/debate")

// Engine sequences the debate phases. It is safe for concurrent use; runs
// for the same uncached prompt are deduplicated via an in-flight table keyed
// by prompt hash.
type Engine struct {
	cfg       *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	provider  CompletionProvider
	searcher  Searcher   // nil disables the grounding phase
	runner    CodeRunner // nil disables the code-execution phase
	store     cache.Cache
	flight    singleflight.Group
}

// NewEngine wires the engine from explicitly constructed dependencies so
// tests can substitute fakes for every collaborator.
func NewEngine(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry, provider CompletionProvider, searcher Searcher, runner CodeRunner, store cache.Cache) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[DEBATE] ", log.LstdFlags)
	}
	if tele == nil {
		tele = telemetry.NewTelemetry(config.TelemetryConfig{})
	}
	return &Engine{
		cfg:       cfg,
		logger:    logger,
		telemetry: tele,
		provider:  provider,
		searcher:  searcher,
		runner:    runner,
		store:     store,
	}
}

// Run validates the request, consults the cache, and otherwise executes the
// full phase pipeline. Failed runs are never cached.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	models := req.Models
	if len(models) == 0 {
		models = e.cfg.LLM.Participants
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	key := cache.Key(req.Prompt)
	if cached := e.lookup(ctx, key); cached != nil {
		e.telemetry.RecordCacheHit()
		e.telemetry.RecordRequest(true, time.Since(start))
		return cached, nil
	}

	v, err, _ := e.flight.Do(key, func() (any, error) {
		return e.runPipeline(ctx, req, models, key)
	})
	e.telemetry.RecordRequest(err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// lookup returns the cached result with HIT status, or nil on miss. Corrupt
// entries count as a miss.
func (e *Engine) lookup(ctx context.Context, key string) *Result {
	if e.store == nil {
		return nil
	}
	raw, found, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Printf("cache read failed, treating as miss: %v", err)
		return nil
	}
	if !found {
		return nil
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		e.logger.Printf("cache entry unreadable, treating as miss: %v", err)
		return nil
	}
	result.Metadata.CacheStatus = CacheHit
	return &result
}

func (e *Engine) runPipeline(ctx context.Context, req Request, models []string, key string) (*Result, error) {
	runID := uuid.New().String()
	start := time.Now()

	ctx, span := engineTracer.Start(ctx, "debate.run",
		trace.WithAttributes(
			attribute.String("debate.id", runID),
			attribute.Int("debate.participants", len(models)),
		))
	defer span.End()

	classification := Classify(req.Prompt)
	span.SetAttributes(attribute.String("debate.type", string(classification.Type)))
	e.logger.Printf("debate %s started: %d participants, type=%s", runID, len(models), classification.Type)

	var transcript []TranscriptEntry

	grounding, sources := e.ground(ctx, req.Prompt, &transcript)

	contexts, err := e.independentSolutions(ctx, req, models, grounding, &transcript)
	if err != nil {
		return nil, e.fail(span, err)
	}

	if classification.EnableCodeExecution && e.runner != nil {
		if err := e.executeCode(ctx, models, contexts, &transcript); err != nil {
			return nil, e.fail(span, err)
		}
	}

	if err := e.crossExamine(ctx, models, contexts, &transcript); err != nil {
		return nil, e.fail(span, err)
	}

	critiques, err := e.critique(ctx, models, contexts, &transcript)
	if err != nil {
		return nil, e.fail(span, err)
	}

	finalAnswer, err := e.synthesize(ctx, req.Prompt, models, contexts, critiques, &transcript)
	if err != nil {
		return nil, e.fail(span, err)
	}

	result := &Result{
		FinalAnswer: finalAnswer,
		Transcript:  transcript,
		Metadata: Metadata{
			DurationSeconds:  time.Since(start).Seconds(),
			ModelsUsed:       rolesFor(models),
			CacheStatus:      CacheMiss,
			GroundingSources: sources,
		},
		Classification: classification,
	}

	e.persist(ctx, key, result)

	span.SetStatus(codes.Ok, "completed")
	e.logger.Printf("debate %s completed in %.2fs", runID, result.Metadata.DurationSeconds)
	return result, nil
}

func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// ground runs the optional search phase. Failures and unavailable search are
// non-fatal: the debate proceeds without grounding and no placeholder entry
// is recorded.
func (e *Engine) ground(ctx context.Context, prompt string, transcript *[]TranscriptEntry) (string, []SourceRef) {
	if e.searcher == nil {
		return "", nil
	}
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.grounding")
	defer span.End()

	results, err := e.searcher.Search(ctx, prompt)
	if err != nil {
		e.logger.Printf("grounding search failed, proceeding without: %v", err)
		span.RecordError(err)
		return "", nil
	}
	if len(results) == 0 {
		return "", nil
	}

	sources := make([]SourceRef, len(results))
	for i, r := range results {
		sources[i] = SourceRef{Title: r.Title, URL: r.URL}
	}
	*transcript = append(*transcript, TranscriptEntry{
		Phase:   PhaseGrounding,
		Payload: GroundingRecord{Query: prompt, Sources: sources},
	})
	e.telemetry.RecordPhase(PhaseGrounding, time.Since(phaseStart))
	return groundingContext(results), sources
}

func (e *Engine) complete(ctx context.Context, model, prompt string, history []llm.Message) (string, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: prompt})
	out, err := e.provider.Complete(ctx, model, messages, e.cfg.LLM.Temperature, e.cfg.LLM.MaxTokens)
	e.telemetry.RecordModelCall(model, err)
	return out, err
}

// independentSolutions fans out one completion call per participant. All
// calls are issued concurrently; participants never see each other's draft.
func (e *Engine) independentSolutions(ctx context.Context, req Request, models []string, grounding string, transcript *[]TranscriptEntry) ([]string, error) {
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.solutions")
	defer span.End()

	prompt := solutionPrompt(req.Prompt, grounding, req.Preset)

	responses := make([]string, len(models))
	errCh := make(chan error, len(models))
	var wg sync.WaitGroup
	for i, model := range models {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()
			out, err := e.complete(ctx, model, prompt, req.History)
			if err != nil {
				errCh <- fmt.Errorf("%s: participant %d (%s): %w", PhaseSolutions, i+1, model, err)
				return
			}
			responses[i] = out
		}(i, model)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	records := make([]SolutionRecord, len(models))
	for i := range models {
		records[i] = SolutionRecord{Model: models[i], Response: responses[i]}
	}
	*transcript = append(*transcript, TranscriptEntry{Phase: PhaseSolutions, Payload: records})
	e.telemetry.RecordPhase(PhaseSolutions, time.Since(phaseStart))
	return responses, nil
}

// executeCode extracts and runs code from each participant's response, then
// has each participant generate adversarial tests against another's results.
// Execution summaries are appended to every running context so later phases
// argue over verified behavior. Skips cleanly when no code was found.
func (e *Engine) executeCode(ctx context.Context, models []string, contexts []string, transcript *[]TranscriptEntry) error {
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.execution")
	defer span.End()

	n := len(models)
	perModel := make([][]sandbox.ExecutionResult, n)
	executed := false
	for i := range contexts {
		perModel[i] = e.runner.ExecuteAll(ctx, contexts[i])
		if perModel[i] != nil {
			executed = true
		}
	}
	if !executed {
		// no fenced code anywhere: phase is skipped, contexts stay equal to
		// the raw solutions
		return nil
	}

	records := make([]ExecutionRecord, n)
	var summaries []string
	for i := range models {
		records[i] = ExecutionRecord{Model: models[i], Executed: perModel[i] != nil, Results: perModel[i]}
		if perModel[i] != nil {
			summaries = append(summaries, executionSummary(models[i], perModel[i]))
		}
	}
	combined := strings.Join(summaries, "\n")

	errCh := make(chan error, n)
	var wg sync.WaitGroup
	for i := range models {
		target := (i + 1) % n
		if n < 2 || perModel[target] == nil {
			continue
		}
		wg.Add(1)
		go func(i, target int) {
			defer wg.Done()
			prompt := adversarialTestPrompt(models[target], executionSummary(models[target], perModel[target]))
			out, err := e.complete(ctx, models[i], prompt, nil)
			if err != nil {
				errCh <- fmt.Errorf("%s: participant %d (%s): %w", PhaseExecution, i+1, models[i], err)
				return
			}
			records[i].AdversarialTests = out
		}(i, target)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
	}

	*transcript = append(*transcript, TranscriptEntry{Phase: PhaseExecution, Payload: records})
	for i := range contexts {
		contexts[i] += "\n\n--- CODE EXECUTION RESULTS ---\n" + combined
	}
	e.telemetry.RecordPhase(PhaseExecution, time.Since(phaseStart))
	return nil
}

type pair struct{ i, j int }

func orderedPairs(n int) []pair {
	var out []pair
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				out = append(out, pair{i, j})
			}
		}
	}
	return out
}

// crossExamine runs the question/defense exchange for every ordered pair.
// The defense must not start before its question resolves; independent pairs
// proceed concurrently.
func (e *Engine) crossExamine(ctx context.Context, models []string, contexts []string, transcript *[]TranscriptEntry) error {
	pairs := orderedPairs(len(models))
	if len(pairs) == 0 {
		return nil
	}
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.cross_examination")
	defer span.End()

	records := make([]ExchangeRecord, len(pairs))
	errCh := make(chan error, len(pairs))
	var wg sync.WaitGroup
	for idx, p := range pairs {
		wg.Add(1)
		go func(idx int, p pair) {
			defer wg.Done()
			question, err := e.complete(ctx, models[p.i], questionPrompt(contexts[p.j]), nil)
			if err != nil {
				errCh <- fmt.Errorf("%s: question by %s: %w", PhaseCrossExam, models[p.i], err)
				return
			}
			defense, err := e.complete(ctx, models[p.j], defensePrompt(contexts[p.j], question), nil)
			if err != nil {
				errCh <- fmt.Errorf("%s: defense by %s: %w", PhaseCrossExam, models[p.j], err)
				return
			}
			records[idx] = ExchangeRecord{
				Interrogator: models[p.i],
				Respondent:   models[p.j],
				Question:     question,
				Defense:      defense,
			}
		}(idx, p)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
	}

	*transcript = append(*transcript, TranscriptEntry{Phase: PhaseCrossExam, Payload: records})
	e.telemetry.RecordPhase(PhaseCrossExam, time.Since(phaseStart))
	return nil
}

// critique fans out one call per ordered pair: each participant lists 2-3
// weaknesses of every other participant's updated response.
func (e *Engine) critique(ctx context.Context, models []string, contexts []string, transcript *[]TranscriptEntry) ([]CritiqueRecord, error) {
	pairs := orderedPairs(len(models))
	if len(pairs) == 0 {
		return nil, nil
	}
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.critique")
	defer span.End()

	records := make([]CritiqueRecord, len(pairs))
	errCh := make(chan error, len(pairs))
	var wg sync.WaitGroup
	for idx, p := range pairs {
		wg.Add(1)
		go func(idx int, p pair) {
			defer wg.Done()
			out, err := e.complete(ctx, models[p.i], critiquePrompt(contexts[p.j]), nil)
			if err != nil {
				errCh <- fmt.Errorf("%s: critique by %s: %w", PhaseCritique, models[p.i], err)
				return
			}
			records[idx] = CritiqueRecord{Critic: models[p.i], Target: models[p.j], Critique: out}
		}(idx, p)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	*transcript = append(*transcript, TranscriptEntry{Phase: PhaseCritique, Payload: records})
	e.telemetry.RecordPhase(PhaseCritique, time.Since(phaseStart))
	return records, nil
}

// synthesize has the first participant consolidate everything into the final
// answer. Always the very last call.
func (e *Engine) synthesize(ctx context.Context, prompt string, models []string, contexts []string, critiques []CritiqueRecord, transcript *[]TranscriptEntry) (string, error) {
	phaseStart := time.Now()
	ctx, span := engineTracer.Start(ctx, "debate.synthesis")
	defer span.End()

	out, err := e.complete(ctx, models[0], synthesisPrompt(prompt, models, contexts, critiques), nil)
	if err != nil {
		return "", fmt.Errorf("%s: synthesizer (%s): %w", PhaseSynthesis, models[0], err)
	}

	*transcript = append(*transcript, TranscriptEntry{Phase: PhaseSynthesis, Payload: SynthesisRecord{Model: models[0], Synthesis: out}})
	e.telemetry.RecordPhase(PhaseSynthesis, time.Since(phaseStart))
	return out, nil
}

func (e *Engine) persist(ctx context.Context, key string, result *Result) {
	if e.store == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		e.logger.Printf("cache marshal failed: %v", err)
		return
	}
	if err := e.store.Put(ctx, key, raw); err != nil {
		e.logger.Printf("cache write failed: %v", err)
	}
}

func rolesFor(models []string) map[string]string {
	roles := make(map[string]string, len(models)+1)
	for i, m := range models {
		roles[fmt.Sprintf("participant_%d", i+1)] = m
	}
	roles["synthesizer"] = models[0]
	return roles
}
