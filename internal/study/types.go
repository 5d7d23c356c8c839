// Package study defines the motion pairs shown side by side.
package study

import "fmt"

// Pair is one low/high motion comparison.
type Pair struct {
	Index        int // position in AllPairs
	Category     int
	CategoryName string
	ModNo        int // position within the category, selects the camera
	Left         string
	Right        string
}

// Study is the category × pair table.
type Study struct {
	Categories []Category
}

// Category groups the pairs that vary one motion quality.
type Category struct {
	Name  string
	Pairs [][2]string
}

// PairsPerCategory is the stride used by Locate.
const PairsPerCategory = 4

var (
	defaultCategories = []string{"weight", "space", "time", "flow"}
	defaultActions    = []string{"walk", "wave", "sit", "put"}
)

// Default returns the built-in 4×4 table, e.g. walk-low-weight.bvh against
// walk-high-weight.bvh.
func Default() *Study {
	s := &Study{}
	for _, c := range defaultCategories {
		cat := Category{Name: c}
		for _, a := range defaultActions {
			cat.Pairs = append(cat.Pairs, [2]string{
				fmt.Sprintf("%s-low-%s.bvh", a, c),
				fmt.Sprintf("%s-high-%s.bvh", a, c),
			})
		}
		s.Categories = append(s.Categories, cat)
	}
	return s
}

// AllPairs flattens the table in category order.
func (s *Study) AllPairs() []Pair {
	var out []Pair
	for ci, c := range s.Categories {
		for mi, p := range c.Pairs {
			out = append(out, Pair{
				Index:        len(out),
				Category:     ci,
				CategoryName: c.Name,
				ModNo:        mi,
				Left:         p[0],
				Right:        p[1],
			})
		}
	}
	return out
}

// Locate splits a flat pair index into (category, modNo).
func Locate(pairIndex int) (category, modNo int) {
	return pairIndex / PairsPerCategory, pairIndex % PairsPerCategory
}

// PairAt returns the pair at a flat index. Regular tables are addressed
// through Locate; tables with uneven categories fall back to AllPairs.
func (s *Study) PairAt(index int) (Pair, error) {
	if index < 0 {
		return Pair{}, fmt.Errorf("study: pair %d out of range", index)
	}
	for _, c := range s.Categories {
		if len(c.Pairs) != PairsPerCategory {
			all := s.AllPairs()
			if index >= len(all) {
				return Pair{}, fmt.Errorf("study: pair %d out of range [0, %d)", index, len(all))
			}
			return all[index], nil
		}
	}
	ci, mi := Locate(index)
	if ci >= len(s.Categories) {
		return Pair{}, fmt.Errorf("study: pair %d out of range [0, %d)", index, len(s.Categories)*PairsPerCategory)
	}
	c := s.Categories[ci]
	return Pair{
		Index:        index,
		Category:     ci,
		CategoryName: c.Name,
		ModNo:        mi,
		Left:         c.Pairs[mi][0],
		Right:        c.Pairs[mi][1],
	}, nil
}
