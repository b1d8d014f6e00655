package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// promptSet is the on-disk shape of settings/prompts.yaml.
type promptSet struct {
	CitationSystemPrompt string `yaml:"citation_system_prompt"`
	EmptyRetrievalPrompt string `yaml:"empty_retrieval_prompt"`
	SummarizationPrompt  string `yaml:"summarization_prompt"`
}

// PromptTemplates holds the orchestrator's boilerplate prompt text, loaded
// once at boot so operators can tune wording without a rebuild.
type PromptTemplates struct {
	entries promptSet
}

// configPaths are the paths to search for config files.
var configPaths = []string{
	"./settings",
	"../settings",
	"../../settings",
	".",
}

var defaultPrompts = promptSet{
	CitationSystemPrompt: "Answer using only the provided context. Cite every factual claim " +
		"with a footnote numeral like [1], [2], matching the References list below. " +
		"Do not invent citations.",
	EmptyRetrievalPrompt: "No relevant context was found for this question. Decline to answer " +
		"and suggest the user rephrase or narrow their question.",
	SummarizationPrompt: "Summarize the following document. Produce a short title, a one-line " +
		"subtitle, a concise abstract, and a list of keywords.",
}

// LoadPromptTemplates loads settings/prompts.yaml if present, falling back
// to built-in defaults for any template left unset.
func LoadPromptTemplates() (*PromptTemplates, error) {
	var data []byte
	var found bool

	for _, basePath := range configPaths {
		filePath := filepath.Join(basePath, "prompts.yaml")
		var err error
		data, err = os.ReadFile(filePath)
		if err == nil {
			found = true
			break
		}
	}

	entries := defaultPrompts
	if found {
		var loaded promptSet
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, err
		}
		if loaded.CitationSystemPrompt != "" {
			entries.CitationSystemPrompt = loaded.CitationSystemPrompt
		}
		if loaded.EmptyRetrievalPrompt != "" {
			entries.EmptyRetrievalPrompt = loaded.EmptyRetrievalPrompt
		}
		if loaded.SummarizationPrompt != "" {
			entries.SummarizationPrompt = loaded.SummarizationPrompt
		}
	}

	return &PromptTemplates{entries: entries}, nil
}

// CitationSystemPrompt returns the instruction prefix used when the
// orchestrator has at least one retrieved chunk to ground the answer.
func (p *PromptTemplates) CitationSystemPrompt() string {
	if p == nil {
		return defaultPrompts.CitationSystemPrompt
	}
	return p.entries.CitationSystemPrompt
}

// EmptyRetrievalPrompt returns the instruction used when no chunks survive
// the similarity threshold.
func (p *PromptTemplates) EmptyRetrievalPrompt() string {
	if p == nil {
		return defaultPrompts.EmptyRetrievalPrompt
	}
	return p.entries.EmptyRetrievalPrompt
}

// SummarizationPrompt returns the instruction used for the ingestion
// pipeline's best-effort summarize stage.
func (p *PromptTemplates) SummarizationPrompt() string {
	if p == nil {
		return defaultPrompts.SummarizationPrompt
	}
	return p.entries.SummarizationPrompt
}
