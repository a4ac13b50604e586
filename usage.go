package aimux

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// UsageTally tracks per-caller completion outcomes across many calls. The
// strategies themselves hold no per-call state, so the tally is the one
// place an application can accumulate success/failure counts for
// diagnostics. Safe for concurrent use.
type UsageTally struct {
	mu     sync.Mutex
	counts map[string]*usageCount
}

type usageCount struct {
	requests  int
	successes int
	failures  int
}

// NewUsageTally creates an empty tally.
func NewUsageTally() *UsageTally {
	return &UsageTally{counts: make(map[string]*usageCount)}
}

// Record registers the outcome of one call under the given caller label.
// The "total" label is maintained implicitly.
func (t *UsageTally) Record(caller string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range []string{"total", caller} {
		c := t.counts[key]
		if c == nil {
			c = &usageCount{}
			t.counts[key] = c
		}
		c.requests++
		if ok {
			c.successes++
		} else {
			c.failures++
		}
	}
}

// Summary renders each caller's tally as "S:{successes},F:{failures}/R:{requests}".
func (t *UsageTally) Summary() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(t.counts))
	for caller, c := range t.counts {
		out[caller] = fmt.Sprintf("S:%d,F:%d/R:%d", c.successes, c.failures, c.requests)
	}
	return out
}

// String renders the summary with callers in sorted order, one per line.
func (t *UsageTally) String() string {
	summary := t.Summary()
	callers := make([]string, 0, len(summary))
	for caller := range summary {
		callers = append(callers, caller)
	}
	sort.Strings(callers)
	var b strings.Builder
	for _, caller := range callers {
		fmt.Fprintf(&b, "%s: %s\n", caller, summary[caller])
	}
	return b.String()
}
