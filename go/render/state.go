package render

import (
	"sort"

	rp "github.com/rmmh/isoview/go/resourcepack"
)

// StateList describes a blockstate's properties for property pickers.
// Given a door it returns something like:
// [[half lower upper] [open false true] [facing east north south west] ...]
// ordered by number of values, then by name.
func StateList(st *rp.BlockState) [][]string {
	attrs := st.Properties()
	if len(attrs) == 0 {
		return nil
	}
	alist := [][]string{}
	for name, values := range attrs {
		alist = append(alist, append([]string{name}, values...))
	}
	sort.Slice(alist, func(i, j int) bool {
		if len(alist[i]) != len(alist[j]) {
			return len(alist[i]) < len(alist[j])
		}
		return alist[i][0] < alist[j][0]
	})
	return alist
}

// DefaultState picks the alphabetically first value of every property.
func DefaultState(st *rp.BlockState) map[string]string {
	props := map[string]string{}
	for _, attr := range StateList(st) {
		props[attr[0]] = attr[1]
	}
	return props
}
