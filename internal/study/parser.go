package study

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
)

// xmlStudy matches the study definition schema:
//
//	<Study>
//	  <Category Index="0" Name="weight">
//	    <Pair Index="0" Left="walk-low-weight.bvh" Right="walk-high-weight.bvh"/>
//	  </Category>
//	</Study>
type xmlStudy struct {
	Categories []xmlCategory `xml:"Category"`
}

type xmlCategory struct {
	Index string    `xml:"Index,attr"`
	Name  string    `xml:"Name,attr"`
	Pairs []xmlPair `xml:"Pair"`
}

type xmlPair struct {
	Index string `xml:"Index,attr"`
	Left  string `xml:"Left,attr"`
	Right string `xml:"Right,attr"`
}

// Parse reads a study XML file. Categories and pairs are ordered by their
// Index attribute; pairs missing either file are skipped.
func Parse(xmlPath string) (*Study, error) {
	raw, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("study: read %s: %w", xmlPath, err)
	}

	var doc xmlStudy
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("study: parse %s: %w", xmlPath, err)
	}

	type indexed struct {
		idx int
		cat Category
	}
	var cats []indexed
	for i, c := range doc.Categories {
		ci, err := strconv.Atoi(c.Index)
		if err != nil {
			ci = i
		}
		slots := map[int][2]string{}
		maxSlot := -1
		for j, p := range c.Pairs {
			if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
				continue
			}
			pi, err := strconv.Atoi(p.Index)
			if err != nil {
				pi = j
			}
			slots[pi] = [2]string{p.Left, p.Right}
			if pi > maxSlot {
				maxSlot = pi
			}
		}
		cat := Category{Name: c.Name}
		for k := 0; k <= maxSlot; k++ {
			if p, ok := slots[k]; ok {
				cat.Pairs = append(cat.Pairs, p)
			}
		}
		cats = append(cats, indexed{ci, cat})
	}

	slices.SortStableFunc(cats, func(a, b indexed) int { return cmp.Compare(a.idx, b.idx) })

	s := &Study{}
	for _, c := range cats {
		s.Categories = append(s.Categories, c.cat)
	}
	if len(s.AllPairs()) == 0 {
		return nil, fmt.Errorf("study: %s defines no pairs", xmlPath)
	}
	return s, nil
}

// Load returns the study defined at xmlPath, or the built-in table when
// xmlPath is empty or does not exist.
func Load(xmlPath string) (*Study, error) {
	if xmlPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(xmlPath); os.IsNotExist(err) {
		return Default(), nil
	}
	return Parse(xmlPath)
}

// TrialOrder returns a random presentation order over all n pairs.
func TrialOrder(n int, rng *rand.Rand) []int {
	if rng == nil {
		return rand.Perm(n)
	}
	return rng.Perm(n)
}

// TrialPair returns the pair shown at position trial of the order drawn
// from seed. The same seed always yields the same sequence.
func (s *Study) TrialPair(trial int, seed uint64) (Pair, error) {
	n := len(s.AllPairs())
	if trial < 0 || trial >= n {
		return Pair{}, fmt.Errorf("study: trial %d out of range [0, %d)", trial, n)
	}
	order := TrialOrder(n, rand.New(rand.NewPCG(seed, seed)))
	return s.PairAt(order[trial])
}
