package detectors_test

import (
	"testing"

	"smellcheck/internal/models"
)

func TestFeatureEnvy(t *testing.T) {
	t.Parallel()

	envy := func(name string, lines ...int) models.Match {
		return models.Match{
			SmellType:  models.SmellFeatureEnvy,
			Context:    "Dummy#m",
			Lines:      lines,
			Message:    "refers to " + name + " more than self (maybe move it to another class?)",
			Parameters: map[string]any{"name": name},
		}
	}

	tests := []struct {
		name string
		body string
		want []models.Match
	}{
		{
			name: "parameter used more than self",
			body: `(args other)
				(call:3 (lvar other) a)
				(call:4 (lvar other) b)
				(fcall:5 log (arglist (lit 1)))`,
			want: []models.Match{envy("other", 3, 4)},
		},
		{
			name: "self used as much as the parameter",
			body: `(args other)
				(call:3 (lvar other) a)
				(call:4 (lvar other) b)
				(fcall:5 log (arglist (lit 1)))
				(call:6 (self) c)`,
			want: nil,
		},
		{
			name: "method that never touches self",
			body: `(args other)
				(call:3 (lvar other) a)
				(call:4 (lvar other) b)`,
			want: nil,
		},
		{
			name: "instance variables are part of self",
			body: `(args)
				(call:3 (ivar @other) a)
				(call:4 (ivar @other) b)
				(call:5 (ivar @other) c)`,
			want: nil,
		},
		{
			name: "tied receivers are both reported",
			body: `(args a b)
				(call:3 (lvar a) x)
				(call:4 (lvar a) y)
				(call:5 (lvar b) x)
				(call:6 (lvar b) y)
				(vcall:7 helper)`,
			want: []models.Match{envy("a", 3, 4), envy("b", 5, 6)},
		},
		{
			name: "only the highest affinity is reported",
			body: `(args a b)
				(call:3 (lvar a) x)
				(call:4 (lvar a) y)
				(call:5 (lvar a) z)
				(call:6 (lvar b) x)
				(call:7 (lvar b) y)
				(vcall:8 helper)`,
			want: []models.Match{envy("a", 3, 5)},
		},
		{
			name: "object creation is not envy",
			body: `(args klass)
				(call:3 (lvar klass) new)
				(call:4 (lvar klass) new)
				(vcall:5 helper)`,
			want: nil,
		},
		{
			name: "local variables count",
			body: `(args)
				(lasgn:3 total (lit 0))
				(op_asgn:4 (lvar total) + (lit 1))
				(op_asgn:5 (lvar total) + (lit 2))
				(call:6 (lvar total) round)
				(vcall:7 helper)`,
			want: []models.Match{envy("total", 4, 6)},
		},
		{
			name: "usages inside blocks count for the method",
			body: `(args order)
				(iter:3 (call (ivar @items) each) (dasgn_curr item)
					(call:4 (lvar order) add (arglist (dvar item)))
					(call:5 (lvar order) touch))
				(call:6 (lvar order) save)`,
			want: []models.Match{envy("order", 4, 6)},
		},
		{
			name: "regexp match against a local",
			body: `(args text)
				(match3:3 (lit /a/) (lvar text))
				(match3:4 (lit /b/) (lvar text))
				(vcall:5 helper)`,
			want: []models.Match{envy("text", 3, 4)},
		},
		{
			name: "global receivers are not envy candidates",
			body: `(args)
				(call:3 (gvar $bravo) to_a)
				(call:4 (gvar $bravo) [] (arglist (ivar @charlie)))`,
			want: nil,
		},
		{
			name: "passing a local as an argument is not a reference",
			body: `(args bravo)
				(call:3
					(call (call (lvar bravo) charlie) + (arglist (fcall delta (arglist (lvar bravo)))))
					- (arglist (fcall echo (arglist (lvar bravo)))))`,
			want: nil,
		},
		{
			name: "returning a local is not a reference",
			body: `(args bravo)
				(call:3 (lvar bravo) charlie (arglist (ivar @delta)))
				(lvar:4 bravo)`,
			want: nil,
		},
		{
			name: "calls nested inside an expression",
			body: `(args charlie)
				(call:3
					(call (call (lvar charlie) delta) - (arglist (call (lvar charlie) echo)))
					* (arglist (vcall foxtrot)))`,
			want: []models.Match{envy("charlie", 3, 3)},
		},
		{
			name: "block parameters with the same name share one receiver",
			body: `(args a b)
				(iter:3 (call (lvar a) each) (dasgn_curr o) (call (dvar o) x))
				(iter:4 (call (lvar b) each) (dasgn_curr o) (call (dvar o) y))
				(vcall:5 helper)`,
			want: []models.Match{envy("o", 3, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := examine(t, "(class:1 Dummy nil (defn:2 m "+tt.body+"))", nil)
			filtered := models.NewReport()
			for _, w := range report.Warnings() {
				if w.SmellType == models.SmellFeatureEnvy {
					filtered.Add(w)
				}
			}
			assertExactly(t, filtered, tt.want...)
		})
	}
}

func TestFeatureEnvyIgnoresDuplicatedArguments(t *testing.T) {
	t.Parallel()

	src := `(defn:1 alfa (args bravo)
		(call:2 (ivar @charlie) delta (arglist (call (lvar bravo) echo)))
		(call:3 (ivar @foxtrot) delta (arglist (call (lvar bravo) echo))))`

	assertExactly(t, examine(t, src, nil), models.Match{
		SmellType: models.SmellDuplicateMethodCall,
		Context:   "alfa",
		Lines:     []int{2, 3},
		Message:   "calls bravo.echo 2 times",
	})
}
