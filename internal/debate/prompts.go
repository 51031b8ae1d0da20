package debate

import (
	"fmt"
	"strings"

	"github.com/roomai/agora/internal/sandbox"
	"github.com/roomai/agora/internal/search"
)

func presetFraming(preset string) string {
	switch preset {
	case PresetCoding:
		return "You are an expert software engineer. Favor working, tested code."
	case PresetAcademic:
		return "You are a rigorous academic. Cite established results and be precise."
	case PresetResearch:
		return "You are a careful researcher. Weigh evidence and flag uncertainty."
	default:
		return "You are an expert problem solver."
	}
}

func solutionPrompt(prompt, grounding, preset string) string {
	var b strings.Builder
	b.WriteString(presetFraming(preset))
	b.WriteString(" Solve this:\n\n")
	if grounding != "" {
		b.WriteString("REAL-TIME RESEARCH DATA:\n")
		b.WriteString(grounding)
		b.WriteString("\n\n")
	}
	b.WriteString(prompt)
	b.WriteString("\n\nProvide a clear, well-reasoned solution.")
	return b.String()
}

func questionPrompt(other string) string {
	return fmt.Sprintf("Review this solution:\n\n%s\n\nAsk ONE critical question to test its validity.", other)
}

func defensePrompt(own, question string) string {
	return fmt.Sprintf("You said:\n%s\n\nYou're challenged with: %s\n\nDefend your reasoning.", own, question)
}

func critiquePrompt(other string) string {
	return fmt.Sprintf("Analyze this solution for flaws:\n\n%s\n\nList 2-3 specific weaknesses.", other)
}

func adversarialTestPrompt(targetModel, executionSummary string) string {
	return fmt.Sprintf(`Be harsh. Another model (%s) produced code with these execution results:

%s

Tear it apart. Produce adversarial edge-case test cases that would break it: boundary values, empty input, negative numbers, very large input. List the concrete test cases.`, targetModel, executionSummary)
}

func synthesisPrompt(prompt string, models []string, responses []string, critiques []CritiqueRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Multiple expert AIs debated:\n\n%q\n\n", prompt)
	for i, r := range responses {
		fmt.Fprintf(&b, "Solution from %s:\n%s\n\n", models[i], r)
	}
	if len(critiques) > 0 {
		b.WriteString("Critiques:\n")
		for _, c := range critiques {
			fmt.Fprintf(&b, "- %s on %s: %s\n", c.Critic, c.Target, c.Critique)
		}
		b.WriteString("\n")
	}
	b.WriteString("Synthesize the BEST aspects into one superior answer.")
	return b.String()
}

// groundingContext flattens search results into the context block prepended
// to every later phase.
func groundingContext(results []search.Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Source: %s (%s)\n%s\n\n", r.Title, r.URL, r.Content)
	}
	return strings.TrimSpace(b.String())
}

// executionSummary renders per-participant execution results in the form the
// models see in later phases, exit codes included.
func executionSummary(model string, results []sandbox.ExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's code execution:\n", model)
	for i, res := range results {
		verdict := "PASS"
		if !res.Succeeded {
			verdict = "FAIL"
		}
		fmt.Fprintf(&b, "Code block %d (%s) [%s]:\nOutput: %s\nExit code: %d\n", i+1, res.Language, verdict, res.Output, res.ExitCode)
	}
	return b.String()
}
