package orchestrator

import (
	"context"
	"fmt"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/hooks"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Build scans every major-version bucket below opts.PackagesDir, publishes
// their archives, merges the bucket registries and writes the registry
// documents and the HTML listing.
//
// Archives that cannot be read are reported as PhaseSkipped events and left
// out. Unreadable directories, write failures and hook failures abort the
// build.
func (o *Orchestrator) Build(ctx context.Context, opts BuildOptions) (*Summary, error) {
	if o.Aggregator == nil {
		return nil, fmt.Errorf("aggregator is not configured")
	}
	if o.Publisher == nil {
		return nil, fmt.Errorf("publisher is not configured")
	}

	buckets, err := registry.DiscoverBuckets(opts.PackagesDir)
	if err != nil {
		return nil, err
	}
	majors := registry.Majors(buckets)
	emit(o.Hooks, Event{Phase: PhaseDiscovering, Msg: fmt.Sprintf("found %d major versions", len(majors))})

	hookCtx := hooks.HookContext{
		PackagesDir:   opts.PackagesDir,
		OutputDir:     opts.OutputDir,
		BaseURL:       opts.BaseURL,
		MajorVersions: majors,
		Vars:          opts.Vars,
	}
	if err := o.runHook(ctx, hooks.PreBuild, hookCtx); err != nil {
		return nil, err
	}

	if err := o.Publisher.Prepare(); err != nil {
		return nil, err
	}

	summary := &Summary{Majors: majors}
	bucketRegistries := make([]*registry.Registry, 0, len(buckets))
	for _, bucket := range buckets {
		reg, err := o.processBucket(ctx, bucket, summary)
		if err != nil {
			return nil, err
		}
		bucketRegistries = append(bucketRegistries, reg)
	}

	emit(o.Hooks, Event{Phase: PhaseMerging, Msg: fmt.Sprintf("merging %d buckets", len(bucketRegistries))})
	root := registry.Merge(bucketRegistries)
	summary.Root = root
	summary.Packages = root.Len()
	summary.Versions = root.VersionCount()

	emit(o.Hooks, Event{Phase: PhaseWriting, Msg: "registry documents"})
	if err := o.Publisher.WriteRegistry(root); err != nil {
		return nil, err
	}
	emit(o.Hooks, Event{Phase: PhaseWriting, Msg: "index page"})
	if err := o.Publisher.WriteHTML(root, majors); err != nil {
		return nil, err
	}

	hookCtx.PackageCount = summary.Packages
	hookCtx.VersionCount = summary.Versions
	hookCtx.Packages = latestVersions(root)
	if err := o.runHook(ctx, hooks.PostBuild, hookCtx); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{
		Phase: PhaseDone,
		Msg:   fmt.Sprintf("%d packages, %d versions", summary.Packages, summary.Versions),
	})
	return summary, nil
}

func (o *Orchestrator) processBucket(ctx context.Context, bucket registry.Bucket, summary *Summary) (*registry.Registry, error) {
	emit(o.Hooks, Event{Phase: PhaseProcessing, ID: bucket.Major, Msg: bucket.Dir})

	reg, outcomes, err := o.Aggregator.Aggregate(ctx, bucket)
	if err != nil {
		return nil, errutils.Wrapf(err, "major version %s", bucket.Major)
	}

	for _, outcome := range outcomes {
		summary.Archives++
		if outcome.Skipped() {
			summary.Skipped++
			emit(o.Hooks, Event{Phase: PhaseSkipped, ID: outcome.Archive, Msg: outcome.Err.Error(), Err: outcome.Err})
			continue
		}
		emit(o.Hooks, Event{Phase: PhasePackage, ID: outcome.Archive, Msg: outcome.Entry.Name + "@" + outcome.Entry.Version})
		for _, warning := range outcome.Warnings {
			emit(o.Hooks, Event{Phase: PhaseWarning, ID: outcome.Archive, Msg: warning})
		}
	}

	copied, err := o.Publisher.PublishArchives(bucket)
	if err != nil {
		return nil, errutils.Wrapf(err, "failed to publish archives of major version %s", bucket.Major)
	}
	emit(o.Hooks, Event{Phase: PhasePublishing, ID: bucket.Major, Msg: fmt.Sprintf("copied %d archives", len(copied))})

	return reg, nil
}

func (o *Orchestrator) runHook(ctx context.Context, hookType hooks.HookType, hookCtx hooks.HookContext) error {
	if o.HookRunner == nil {
		return nil
	}
	emit(o.Hooks, Event{Phase: PhaseHook, ID: string(hookType), Msg: "running hook"})
	return o.HookRunner.Execute(ctx, hookType, hookCtx)
}

func latestVersions(root *registry.Registry) map[string]string {
	out := make(map[string]string, root.Len())
	for _, name := range root.Names() {
		pkg, _ := root.Package(name)
		out[name] = pkg.Latest
	}
	return out
}
