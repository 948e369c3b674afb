package collector

import (
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
)

const (
	DefaultConcurrency    = 1
	DefaultRequestTimeout = 30 * time.Second
)

type (
	// Config controls how a tree is walked.
	Config struct {
		// MaxDepth limits how many levels below the root are emitted. Zero means unbounded.
		MaxDepth int
		// Concurrency is the number of listing calls allowed in flight. One walks the tree sequentially.
		Concurrency int
		// RequestTimeout bounds each listing call. Zero disables the per-call timeout.
		RequestTimeout time.Duration
	}

	// Collector flattens a remote tree into a list of entries with materialized paths.
	Collector struct {
		lister         directory.ChildLister
		maxDepth       int
		concurrency    int
		requestTimeout time.Duration
	}

	// BranchFailure records a container whose children could not be listed.
	BranchFailure struct {
		Container directory.ContainerRef
		Path      string
		Err       error
	}

	// Result of a traversal.
	Result struct {
		Items      []directory.Entry
		TotalCount int
		Failures   []BranchFailure
		Truncated  bool
	}

	// listing is the outcome of one children request, folded by the caller.
	listing struct {
		children []directory.Child
		err      error
	}

	// frame is a container on the sequential worklist.
	frame struct {
		ref      directory.ContainerRef
		path     string
		depth    int
		children []directory.Child
		next     int
	}

	// pending is a container waiting to be listed in parallel mode.
	pending struct {
		ref   directory.ContainerRef
		path  string
		depth int
	}
)
