//go:generate mockgen -destination=./mocks/orchestrator.go . BucketAggregator,Publisher,HookRunner

package orchestrator

import (
	"context"

	"github.com/glorpus-work/upmreg/pkg/hooks"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

// BucketAggregator builds the registry of one major-version bucket.
type BucketAggregator interface {
	Aggregate(ctx context.Context, bucket registry.Bucket) (*registry.Registry, []registry.Outcome, error)
}

// Publisher writes the registry tree.
type Publisher interface {
	Prepare() error
	PublishArchives(bucket registry.Bucket) ([]string, error)
	WriteRegistry(root *registry.Registry) error
	WriteHTML(root *registry.Registry, majors []string) error
}

// HookRunner runs user scripts around a build.
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hookCtx hooks.HookContext) error
}

// Orchestrator ties the aggregator, the publisher and the build hooks together.
type Orchestrator struct {
	Aggregator BucketAggregator
	Publisher  Publisher
	HookRunner HookRunner // optional
	Hooks      Hooks      // Hooks for progress and event notifications
}

// Build phases reported through Event.Phase.
const (
	PhaseDiscovering = "discovering"
	PhaseHook        = "hook"
	PhaseProcessing  = "processing"
	PhasePackage     = "package"
	PhaseWarning     = "warning"
	PhaseSkipped     = "skipped"
	PhasePublishing  = "publishing"
	PhaseMerging     = "merging"
	PhaseWriting     = "writing"
	PhaseDone        = "done"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	ID    string // bucket or archive the event is about
	Msg   string
	Err   error // set for skipped archives
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// BuildOptions control a registry build.
type BuildOptions struct {
	PackagesDir string
	OutputDir   string
	BaseURL     string
	// Vars are exposed to hook scripts next to the built-in variables.
	Vars map[string]interface{}
}

// Summary reports what a build produced.
type Summary struct {
	Majors   []string
	Archives int
	Skipped  int
	Packages int
	Versions int
	Root     *registry.Registry
}
