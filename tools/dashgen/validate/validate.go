// Package validate checks generated dashboards and rule files: every
// PromQL expression must parse and may only reference known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/buying-list/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// histogramSuffixes are stripped before a series name is looked up.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Expr parses expr and returns the metric names it selects that are not in
// known.
func Expr(expr string, known map[string]bool) ([]string, error) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}

	var unknown []string
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !isKnown(vs.Name, known) {
			unknown = append(unknown, vs.Name)
		}
		return nil
	})
	return unknown, nil
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// Dashboard validates every Prometheus target of every panel, including
// panels nested in rows.
func Dashboard(d dashboard.Dashboard, known map[string]bool) Result {
	var res Result
	for _, p := range d.Panels {
		switch {
		case p.Panel != nil:
			checkPanel(&res, p.Panel, known)
		case p.RowPanel != nil:
			for i := range p.RowPanel.Panels {
				checkPanel(&res, &p.RowPanel.Panels[i], known)
			}
		}
	}
	return res
}

func checkPanel(res *Result, p *dashboard.Panel, known map[string]bool) {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}
	if len(p.Targets) == 0 {
		res.warnf("panel %q has no targets", title)
		return
	}

	for _, target := range p.Targets {
		// Targets are variant types; the JSON form is the stable view.
		raw, err := json.Marshal(target)
		if err != nil {
			res.errorf("panel %q: encoding target: %v", title, err)
			continue
		}
		var q struct {
			Expr *string `json:"expr"`
		}
		if err := json.Unmarshal(raw, &q); err != nil || q.Expr == nil {
			res.warnf("panel %q has a non-Prometheus target", title)
			continue
		}
		checkExpr(res, fmt.Sprintf("panel %q", title), *q.Expr, known)
	}
}

// Rules validates the expressions of a PrometheusRule. Recording rule
// names defined in the file must also be known.
func Rules(pr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range pr.Spec.Groups {
		if len(g.Rules) == 0 {
			res.warnf("group %q has no rules", g.Name)
		}
		for _, r := range g.Rules {
			name := r.Alert
			if r.Record != "" {
				name = r.Record
				if !known[r.Record] {
					res.errorf("recording rule %q is not a known metric", r.Record)
				}
			}
			if r.Record == "" && r.Alert == "" {
				res.errorf("rule in group %q has neither record nor alert", g.Name)
			}
			checkExpr(&res, fmt.Sprintf("rule %q", name), r.Expr, known)
		}
	}
	return res
}

func checkExpr(res *Result, where, expr string, known map[string]bool) {
	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return
	}
	unknown, err := Expr(expr, known)
	if err != nil {
		res.errorf("%s: %v", where, err)
		return
	}
	for _, name := range unknown {
		res.errorf("%s: unknown metric %q", where, name)
	}
}
