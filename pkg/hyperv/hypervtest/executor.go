// Package hypervtest provides a scripted PowerShell executor for tests.
package hypervtest

import (
	"context"
	"strings"
	"sync"
)

type rule struct {
	contains string
	output   string
	err      error
	once     bool
}

// Executor answers scripts from rules registered with On, Once and Fail. The first
// rule whose fragment appears in the script wins; unmatched scripts print
// nothing and succeed.
type Executor struct {
	mu      sync.Mutex
	rules   []rule
	scripts []string
}

func (e *Executor) On(contains, output string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule{contains: contains, output: output})
}

// Once is On for a single matching script.
func (e *Executor) Once(contains, output string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule{contains: contains, output: output, once: true})
}

func (e *Executor) Fail(contains string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule{contains: contains, err: err})
}

func (e *Executor) Run(_ context.Context, script string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts = append(e.scripts, script)
	for i, r := range e.rules {
		if strings.Contains(script, r.contains) {
			if r.once {
				e.rules = append(e.rules[:i:i], e.rules[i+1:]...)
			}
			if r.err != nil {
				return nil, r.err
			}
			return []byte(r.output), nil
		}
	}
	return nil, nil
}

// Scripts returns every script run so far.
func (e *Executor) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.scripts...)
}

// Commands returns the scripts that were not lookups, i.e. did not end in
// ConvertTo-Json.
func (e *Executor) Commands() []string {
	var out []string
	for _, s := range e.Scripts() {
		if !strings.Contains(s, "ConvertTo-Json") {
			out = append(out, s)
		}
	}
	return out
}
