package types

import "context"

// LLMClient is the minimal interface the pipeline uses to call a
// chat-completion endpoint. Implementations live in internal/llm.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// TableStore is the persistence boundary, keyed by project name.
// ReplaceAll has delete-all-then-insert-all semantics: the stored table
// for the project is overwritten with exactly the given record set.
type TableStore interface {
	// LoadProject returns the stored project, or (nil, nil) when the
	// project has never been saved.
	LoadProject(name string) (*Project, error)

	// ReplaceAll overwrites the stored project with p.
	ReplaceAll(p *Project) error

	// ListProjects returns stored project names in lexical order.
	ListProjects() ([]string, error)

	// DeleteProject removes a project; deleting an absent project is
	// not an error.
	DeleteProject(name string) error

	// Close releases any underlying resources.
	Close() error
}
