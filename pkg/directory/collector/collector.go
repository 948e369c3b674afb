package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultConfig walks sequentially, without a depth limit.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       0,
		Concurrency:    DefaultConcurrency,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// New creates a collector reading listings from lister.
func New(lister directory.ChildLister, cfg Config) *Collector {
	c := &Collector{
		lister:         lister,
		maxDepth:       cfg.MaxDepth,
		concurrency:    cfg.Concurrency,
		requestTimeout: cfg.RequestTimeout,
	}

	if c.concurrency < 1 {
		c.concurrency = DefaultConcurrency
	}

	if c.maxDepth < 0 {
		c.maxDepth = 0
	}

	return c
}

// CollectAll walks the whole drive starting at its root.
func (c *Collector) CollectAll(ctx context.Context, driveID string) (*Result, error) {
	return c.Collect(ctx, directory.Root(driveID))
}

// Collect returns every descendant of root, never root itself. A container
// that cannot be listed contributes an empty subtree and a BranchFailure; the
// only error returned is the cancellation of ctx.
func (c *Collector) Collect(ctx context.Context, root directory.ContainerRef) (*Result, error) {
	slog.Debug(">>Collector.Collect")
	defer slog.Debug("<<Collector.Collect")

	if root.ItemID == "" {
		root.ItemID = directory.RootItemID
	}

	var (
		result *Result
		err    error
	)
	if c.concurrency > 1 {
		result, err = c.collectParallel(ctx, root)
	} else {
		result, err = c.collectSequential(ctx, root)
	}

	result.TotalCount = len(result.Items)
	slog.Debug("Collected tree", "driveID", root.DriveID, "itemID", root.ItemID, "count", result.TotalCount, "failures", len(result.Failures), "truncated", result.Truncated)

	return result, err
}

// Err aggregates the branch failures of the traversal, nil when every
// container was listed.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, fmt.Errorf("list children of %q (item %s): %w", f.Path, f.Container.ItemID, f.Err))
	}

	return merr.ErrorOrNil()
}

func (c *Collector) collectSequential(ctx context.Context, root directory.ContainerRef) (*Result, error) {
	result := &Result{Items: []directory.Entry{}}

	stack := []*frame{{
		ref:      root,
		children: result.fold(root, "", c.list(ctx, root)),
	}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.children[top.next]
		top.next++

		path := directory.JoinPath(top.path, child.Name)
		result.Items = append(result.Items, directory.NewEntry(child, path))

		if !child.IsFolder {
			continue
		}

		if c.atDepthLimit(top.depth + 1) {
			result.Truncated = true
			continue
		}

		ref := directory.ContainerRef{DriveID: root.DriveID, ItemID: child.ID}
		stack = append(stack, &frame{
			ref:      ref,
			path:     path,
			depth:    top.depth + 1,
			children: result.fold(ref, path, c.list(ctx, ref)),
		})
	}

	return result, nil
}

// collectParallel lists one level of the tree at a time and assembles the
// same pre-order output the sequential walk produces.
func (c *Collector) collectParallel(ctx context.Context, root directory.ContainerRef) (*Result, error) {
	result := &Result{Items: []directory.Entry{}}
	listings := make(map[string][]directory.Child)

	level := []pending{{ref: root}}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			result.Items = assemble(root.ItemID, listings)
			return result, err
		}

		fetched := make([]listing, len(level))

		var g errgroup.Group
		g.SetLimit(c.concurrency)
		for i, p := range level {
			g.Go(func() error {
				fetched[i] = c.list(ctx, p.ref)
				return nil
			})
		}
		_ = g.Wait()

		var next []pending
		for i, p := range level {
			children := result.fold(p.ref, p.path, fetched[i])
			listings[p.ref.ItemID] = children

			for _, child := range children {
				if !child.IsFolder {
					continue
				}

				if c.atDepthLimit(p.depth + 1) {
					result.Truncated = true
					continue
				}

				next = append(next, pending{
					ref:   directory.ContainerRef{DriveID: root.DriveID, ItemID: child.ID},
					path:  directory.JoinPath(p.path, child.Name),
					depth: p.depth + 1,
				})
			}
		}

		level = next
	}

	result.Items = assemble(root.ItemID, listings)

	return result, nil
}

// assemble flattens the listings into pre-order, starting at rootID.
func assemble(rootID string, listings map[string][]directory.Child) []directory.Entry {
	items := []directory.Entry{}

	stack := []*frame{{children: listings[rootID]}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.children[top.next]
		top.next++

		path := directory.JoinPath(top.path, child.Name)
		items = append(items, directory.NewEntry(child, path))

		if !child.IsFolder {
			continue
		}

		if children, ok := listings[child.ID]; ok {
			stack = append(stack, &frame{path: path, children: children})
		}
	}

	return items
}

func (c *Collector) atDepthLimit(depth int) bool {
	return c.maxDepth > 0 && depth >= c.maxDepth
}

func (c *Collector) list(ctx context.Context, ref directory.ContainerRef) listing {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	children, err := c.lister.ListChildren(ctx, ref.DriveID, ref.ItemID)

	return listing{children: children, err: err}
}

// fold turns a failed listing into an empty subtree and records the failure.
func (r *Result) fold(ref directory.ContainerRef, path string, l listing) []directory.Child {
	if l.err != nil {
		slog.Warn("Failed to list container children, skipping branch", "driveID", ref.DriveID, "itemID", ref.ItemID, "path", path, "error", l.err)
		r.Failures = append(r.Failures, BranchFailure{
			Container: ref,
			Path:      path,
			Err:       l.err,
		})

		return nil
	}

	return l.children
}
