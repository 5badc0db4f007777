// Package plan applies declarative batches of file-system steps through
// a mediator. Steps may depend on each other (a directory before the
// files inside it); application topologically sorts the steps and runs
// them in dependency order. Application is not atomic: it stops at the
// first failure and reports what was applied.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/gammazero/toposort"

	"github.com/gatefs/gatefs/pkg/gatefs"
)

// Step operation kinds.
const (
	OpMkdir     = "mkdir"
	OpWrite     = "write"
	OpAppend    = "append"
	OpCopy      = "copy"
	OpRename    = "rename"
	OpRemove    = "remove"
	OpRemoveAll = "remove_all"
)

// Step is one declarative file-system action.
type Step struct {
	ID        string      `json:"id"`
	Op        string      `json:"op"`
	Path      string      `json:"path"`
	Dest      string      `json:"dest,omitempty"`
	Content   string      `json:"content,omitempty"`
	Mode      fs.FileMode `json:"mode,omitempty"`
	DependsOn []string    `json:"depends_on,omitempty"`
}

// Plan is an ordered collection of steps plus metadata.
type Plan struct {
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// Unmarshal parses and validates a JSON plan.
func Unmarshal(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal serializes a plan to indented JSON.
func Marshal(p *Plan) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Validate checks step IDs, operation kinds, and dependency references.
func (p *Plan) Validate() error {
	ids := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("plan: step with op %q has no id", step.Op)
		}
		if ids[step.ID] {
			return fmt.Errorf("plan: duplicate step id %q", step.ID)
		}
		ids[step.ID] = true

		switch step.Op {
		case OpMkdir, OpWrite, OpAppend, OpRemove, OpRemoveAll:
		case OpCopy, OpRename:
			if step.Dest == "" {
				return fmt.Errorf("plan: step %q (%s) requires a dest", step.ID, step.Op)
			}
		default:
			return fmt.Errorf("plan: step %q has unknown op %q", step.ID, step.Op)
		}
	}
	for _, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("plan: step %q depends on unknown step %q", step.ID, dep)
			}
		}
	}
	return nil
}

// Sorted returns the steps in dependency order. Steps outside any
// dependency edge keep their declaration order at the end.
func (p *Plan) Sorted() ([]Step, error) {
	byID := make(map[string]Step, len(p.Steps))
	for _, step := range p.Steps {
		byID[step.ID] = step
	}

	edges := make([]toposort.Edge, 0)
	for _, step := range p.Steps {
		for _, dep := range step.DependsOn {
			// Edge element 0 sorts before element 1.
			edges = append(edges, toposort.Edge{dep, step.ID})
		}
	}

	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("plan: circular dependency: %w", err)
	}

	sorted := make([]Step, 0, len(p.Steps))
	placed := make(map[string]bool, len(p.Steps))
	for _, idValue := range sortedIDs {
		id, ok := idValue.(string)
		if !ok {
			return nil, fmt.Errorf("plan: unexpected sort element %T", idValue)
		}
		if step, exists := byID[id]; exists && !placed[id] {
			sorted = append(sorted, step)
			placed[id] = true
		}
	}
	for _, step := range p.Steps {
		if !placed[step.ID] {
			sorted = append(sorted, step)
			placed[step.ID] = true
		}
	}
	return sorted, nil
}

// Apply validates, sorts, and executes the plan through m. It returns
// the IDs of the steps that completed; on failure the error names the
// step that stopped application.
func Apply(ctx context.Context, m *gatefs.Mediator, p *Plan) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	steps, err := p.Sorted()
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := apply(ctx, m, step); err != nil {
			return applied, fmt.Errorf("plan: step %q (%s %s): %w", step.ID, step.Op, step.Path, err)
		}
		applied = append(applied, step.ID)
	}
	return applied, nil
}

func apply(ctx context.Context, m *gatefs.Mediator, step Step) error {
	switch step.Op {
	case OpMkdir:
		return m.MkdirAll(ctx, step.Path, step.mode(0o755))
	case OpWrite:
		return m.WriteFile(ctx, step.Path, []byte(step.Content), step.mode(0o644))
	case OpAppend:
		return m.AppendFile(ctx, step.Path, []byte(step.Content), step.mode(0o644))
	case OpCopy:
		return m.Copy(ctx, step.Path, step.Dest)
	case OpRename:
		return m.Rename(ctx, step.Path, step.Dest)
	case OpRemove:
		return m.Remove(ctx, step.Path)
	case OpRemoveAll:
		return m.RemoveAll(ctx, step.Path)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func (s Step) mode(fallback fs.FileMode) fs.FileMode {
	if s.Mode == 0 {
		return fallback
	}
	return s.Mode
}
