package classify

// Operation is the coarse-grained category the rule engine reasons about.
type Operation string

const (
	OpRead    Operation = "read"
	OpWrite   Operation = "write"
	OpDelete  Operation = "delete"
	OpExecute Operation = "execute"
	OpAdmin   Operation = "admin"
)

// IsValid reports whether o is one of the five known operation classes.
func (o Operation) IsValid() bool {
	switch o {
	case OpRead, OpWrite, OpDelete, OpExecute, OpAdmin:
		return true
	default:
		return false
	}
}

// defaultOperation is returned when no token in a tool name matches any
// keyword: the conservative choice, since an unknown verb is more likely a
// side-effecting action than a pure read.
const defaultOperation = OpWrite

// priority orders operation classes from highest to lowest. The classifier
// returns the highest-priority class among all matched tokens.
var priority = map[Operation]int{
	OpAdmin:   5,
	OpDelete:  4,
	OpExecute: 3,
	OpWrite:   2,
	OpRead:    1,
}

// keywords maps each operation class to the set of lowercase word tokens
// that indicate it. A token may appear in more than one set; priority
// resolves the conflict during classification.
var keywords = map[Operation]map[string]struct{}{
	OpAdmin: toSet(
		"admin", "administer", "administrate", "manage", "grant", "revoke",
		"assign", "unassign", "invite", "approve", "reject", "block", "unblock",
		"ban", "unban", "promote", "demote", "permission", "authorize",
		"authenticate", "allow", "deny", "enable", "disable", "restart",
		"reboot", "upgrade", "downgrade", "scale", "provision", "install",
		"uninstall", "migrate",
	),
	OpDelete: toSet(
		"delete", "remove", "destroy", "drop", "purge", "clear", "erase",
		"archive", "trash", "discard", "abandon", "cancel", "abort",
		"terminate", "kill", "stop", "halt", "reset", "wipe", "flush",
		"clean", "prune",
	),
	OpExecute: toSet(
		"send", "email", "mail", "notify", "message", "post", "publish",
		"broadcast", "transmit", "execute", "run", "invoke", "call",
		"trigger", "fire", "launch", "start", "begin", "process", "compile",
		"build", "deploy", "render", "convert", "transform", "schedule",
		"queue", "enqueue", "dispatch", "submit",
	),
	OpWrite: toSet(
		"create", "add", "new", "insert", "post", "put", "make", "build",
		"generate", "initialize", "setup", "register", "update", "modify",
		"edit", "change", "set", "patch", "alter", "amend", "revise",
		"replace", "append", "push", "attach", "extend", "increment",
		"configure", "adjust", "tune", "customize",
	),
	OpRead: toSet(
		"read", "get", "fetch", "retrieve", "list", "show", "view",
		"display", "query", "search", "find", "lookup", "select", "scan",
		"index", "count", "check", "validate", "verify", "inspect",
		"examine", "test", "peek", "preview", "download", "dump", "export",
		"extract", "pull", "clone", "status", "info", "describe", "details",
		"summary", "stat",
	),
}

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// classesOf returns every operation class that contains the given token,
// or nil if the token matches nothing.
func classesOf(token string) []Operation {
	var matches []Operation
	for op, set := range keywords {
		if _, ok := set[token]; ok {
			matches = append(matches, op)
		}
	}
	return matches
}

// highestPriority returns the highest-priority operation among ops. ops
// must be non-empty.
func highestPriority(ops []Operation) Operation {
	best := ops[0]
	for _, op := range ops[1:] {
		if priority[op] > priority[best] {
			best = op
		}
	}
	return best
}
