package tuner

import (
	"strings"
	"testing"
)

func TestRevisionPrompt_VerbatimInclusion(t *testing.T) {
	tmpl := "Summarize {text} in {n} words"
	feedback := "too verbose, drop the greeting"
	got := revisionPrompt(tmpl, feedback, "")

	if !strings.Contains(got, tmpl) {
		t.Error("template not included verbatim")
	}
	if !strings.Contains(got, feedback) {
		t.Error("feedback not included verbatim")
	}
	if !strings.Contains(got, "placeholder") {
		t.Error("no placeholder-preservation instruction")
	}
	if strings.Contains(got, "PREVIOUS SUMMARY") {
		t.Error("summary section present without a summary")
	}
}

func TestRevisionPrompt_IncludesSummary(t *testing.T) {
	got := revisionPrompt("{x}", "wrong tone", "prefers formal tone")
	if !strings.Contains(got, "prefers formal tone") {
		t.Error("summary not included")
	}
}

func TestMergePrompt_WithPreviousSummary(t *testing.T) {
	got := mergePrompt("summarization", "keep it short", []string{"too verbose", "too formal"})
	for _, want := range []string{"summarization", "PREVIOUS SUMMARY", "keep it short", "too verbose", "too formal"} {
		if !strings.Contains(got, want) {
			t.Errorf("merge prompt missing %q", want)
		}
	}
}

func TestMergePrompt_NoPreviousSummary(t *testing.T) {
	got := mergePrompt("translation", "", []string{"wrong dialect"})
	if strings.Contains(got, "PREVIOUS SUMMARY") {
		t.Error("previous-summary section present for empty summary")
	}
	if !strings.Contains(got, "wrong dialect") {
		t.Error("feedback missing")
	}
}

func TestTypePrompt(t *testing.T) {
	tmpl := "Translate {text} to {lang}"
	got := typePrompt(tmpl)
	if !strings.Contains(got, tmpl) {
		t.Error("template not included verbatim")
	}
	if !strings.Contains(got, "ONLY the type") {
		t.Error("output constraint missing")
	}
}
