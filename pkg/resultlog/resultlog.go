// Package resultlog keeps finished races as JSON lines and queries them with JSONPath.
package resultlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

// AllResults selects every entry of the log.
const AllResults = "$[*]"

type (
	Option func(*Log)
	Log    struct {
		path string
		mu   sync.Mutex
		l    *log.Logger
	}
)

func WithLogger(l *log.Logger) Option {
	return func(r *Log) {
		r.l = l
	}
}

func New(path string, opts ...Option) *Log {
	ret := &Log{path: path, l: log.Default().Named("resultlog")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *Log) Path() string {
	return r.path
}

// Append writes outcome as a single line.
func (r *Log) Append(outcome *model.RaceOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err = f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Entries returns all lines as generic JSON values. A missing file is an empty log.
func (r *Log) Entries() ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []any{}, nil
		}
		return nil, err
	}
	defer f.Close()

	ret := []any{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := oj.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", r.path, lineNo, err)
		}
		ret = append(ret, v)
	}
	return ret, scanner.Err()
}

// Query applies a JSONPath expression to the array of all entries,
// e.g. "$[?(@.trackName == 'Monza')].totalTime".
func (r *Log) Query(expr string) ([]any, error) {
	if expr == "" {
		expr = AllResults
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}
	return x.Get(entries), nil
}

// Outcomes is like Query but requires the matches to be complete results.
func (r *Log) Outcomes(expr string) ([]*model.RaceOutcome, error) {
	matches, err := r.Query(expr)
	if err != nil {
		return nil, err
	}
	ret := make([]*model.RaceOutcome, 0, len(matches))
	for _, m := range matches {
		if _, ok := m.(map[string]any); !ok {
			return nil, fmt.Errorf("query %q selects %T, not a result", expr, m)
		}
		var o model.RaceOutcome
		if err := json.Unmarshal([]byte(oj.JSON(m)), &o); err != nil {
			return nil, err
		}
		ret = append(ret, &o)
	}
	return ret, nil
}

// Format renders query output with sorted keys.
func Format(v any) string {
	return oj.JSON(v, &ojg.Options{Sort: true, Indent: 2})
}
