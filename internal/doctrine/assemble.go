package doctrine

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"skyshield/internal/model"
)

var templateFuncs = template.FuncMap{
	"money": money,
}

// money renders an amount with thousands separators, e.g. 2500000 ->
// "2,500,000".
func money(v any) (string, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		n = int64(x)
	default:
		return "", fmt.Errorf("money: unsupported type %T", v)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String(), nil
	}
	return b.String(), nil
}

// AssembleOption renders a pattern's narrative from its computed parameter
// set and packages the machine-readable summary. A parameter set missing a
// field the narrative requires fails this one option only.
func AssembleOption(p Pattern, params Params, now time.Time) (model.GeneratedOption, error) {
	tmpl, err := template.New(p.ID()).Funcs(templateFuncs).Option("missingkey=error").Parse(p.Template())
	if err != nil {
		return model.GeneratedOption{}, fmt.Errorf("parse narrative %s: %w", p.ID(), err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, map[string]any(params)); err != nil {
		return model.GeneratedOption{}, fmt.Errorf("render narrative %s: %w", p.ID(), err)
	}
	return model.GeneratedOption{
		ID:             fmt.Sprintf("%s_%d", p.ID(), now.Unix()),
		Title:          p.Title(),
		Narrative:      strings.TrimSpace(b.String()),
		PatternID:      p.ID(),
		Parameters:     params,
		EstimatedCost:  paramInt(params, "cost"),
		SuccessPercent: paramInt(params, "success_rate"),
		AssetsUsed:     paramStrings(params, "systems_used"),
	}, nil
}

func paramInt(params Params, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func paramStrings(params Params, key string) []string {
	if v, ok := params[key].([]string); ok {
		return v
	}
	return nil
}
