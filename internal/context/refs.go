package context

// ObjectRefs counts usages bound to each named receiver in a scope.
type ObjectRefs struct {
	lines map[string][]int
	order []string
}

func NewObjectRefs() *ObjectRefs {
	return &ObjectRefs{lines: make(map[string][]int)}
}

// Record adds one usage of name at line.
func (r *ObjectRefs) Record(name string, line int) {
	if _, ok := r.lines[name]; !ok {
		r.order = append(r.order, name)
	}
	r.lines[name] = append(r.lines[name], line)
}

// Names returns the receivers in order of first usage.
func (r *ObjectRefs) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *ObjectRefs) Count(name string) int {
	return len(r.lines[name])
}

func (r *ObjectRefs) Lines(name string) []int {
	return append([]int(nil), r.lines[name]...)
}

// MostPopular returns the receivers tied at the highest usage count,
// together with that count.
func (r *ObjectRefs) MostPopular() ([]string, int) {
	best := 0
	var names []string
	for _, name := range r.order {
		switch count := len(r.lines[name]); {
		case count > best:
			best = count
			names = []string{name}
		case count == best:
			names = append(names, name)
		}
	}
	return names, best
}
