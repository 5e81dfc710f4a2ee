package farm

// Category is a top-level grouping axis of the farm tree.
type Category string

const (
	// CategoryTag groups scenes under tags/<tag name>/.
	CategoryTag Category = "tags"
	// CategoryPerformer groups scenes under performers/<performer name>/.
	CategoryPerformer Category = "performers"
)

// OpKind identifies a planned filesystem operation.
type OpKind int

const (
	// OpCreate creates a missing link.
	OpCreate OpKind = iota
	// OpReplace points an existing link at a new target.
	OpReplace
	// OpNoop records a link that is already correct.
	OpNoop
	// OpRemove deletes a link (clean path only).
	OpRemove
)

// String returns the lowercase operation name.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpReplace:
		return "replace"
	case OpNoop:
		return "noop"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Operation is one planned link mutation. LinkPath is absolute.
type Operation struct {
	Kind      OpKind
	LinkPath  string
	Target    string
	OldTarget string // previous target, set for OpReplace
}

// Plan is the declarative output of planning: directories to ensure
// (parents before children) and link operations in deterministic order.
// Planning never touches the filesystem; the executor applies plans.
type Plan struct {
	Dirs     []string
	Ops      []Operation
	Warnings []string
}

// Counts tallies the plan's operations by kind.
func (p *Plan) Counts() (create, replace, noop, remove int) {
	for _, op := range p.Ops {
		switch op.Kind {
		case OpCreate:
			create++
		case OpReplace:
			replace++
		case OpNoop:
			noop++
		case OpRemove:
			remove++
		}
	}
	return
}

// Converged reports whether the plan mutates nothing.
func (p *Plan) Converged() bool {
	for _, op := range p.Ops {
		if op.Kind != OpNoop {
			return false
		}
	}
	return true
}
