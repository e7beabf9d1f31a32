package main

import (
	"bufio"
	"crypto/md5"
	"encoding/binary"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type example struct {
	Text  string
	Label int
}

// Built-in sentiment corpus: 0 = positive, 1 = negative.
var demoCorpus = []example{
	{"I love this product, it is amazing", 0},
	{"The best experience of my life", 0},
	{"Fantastic support and great quality", 0},
	{"I am very happy with the results", 0},
	{"What a wonderful day", 0},
	{"High quality and super fast delivery", 0},
	{"I enjoy using this software every day", 0},
	{"Absolutely brilliant work", 0},
	{"Good job team, well done", 0},
	{"Everything works perfectly fine", 0},
	{"Joyful and happy day", 0},
	{"Great quality, I love it", 0},

	{"Absolutely terrible service and rude staff", 1},
	{"I hate waiting for so long, waste of time", 1},
	{"This is the worst item I ever bought", 1},
	{"Completely broken and useless", 1},
	{"I am very disappointed with this", 1},
	{"Errors everywhere, cannot use it", 1},
	{"Sad and boring experience", 1},
	{"Not recommended, stay away", 1},
	{"It failed to load multiple times", 1},
	{"Garbage quality, do not buy", 1},
	{"Start up failed completely", 1},
	{"Terrible and broken, I hate it", 1},
}

// loadTSV reads "label<TAB>text" lines. Blank lines and lines starting with
// '#' are skipped.
func loadTSV(path string) ([]example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	var out []example
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		label, text, ok := strings.Cut(s, "\t")
		if !ok {
			return nil, errors.Errorf("%s:%d: want label<TAB>text", path, line)
		}
		l, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: label", path, line)
		}
		out = append(out, example{Text: text, Label: l})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read dataset")
	}
	return out, nil
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit or apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

const (
	padToken = "<pad>"
	unkToken = "<unk>"
	padIndex = 0
	unkIndex = 1
)

// tokenEncoder turns a token list into a fixed-length index sequence.
type tokenEncoder interface {
	encode(tokens []string, maxLen int) []int
	size() int
	// words returns the string of every index, or nil when indices cannot be
	// mapped back to words.
	words() []string
}

type vocabulary struct {
	list  []string
	index map[string]int
}

// buildVocabulary indexes every token seen at least minCount times, most
// frequent first. Ties break alphabetically so the result is deterministic.
func buildVocabulary(docs [][]string, minCount int) *vocabulary {
	counts := make(map[string]int)
	for _, d := range docs {
		for _, tok := range d {
			counts[tok]++
		}
	}
	kept := make([]string, 0, len(counts))
	for w, n := range counts {
		if n >= minCount {
			kept = append(kept, w)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if counts[kept[i]] != counts[kept[j]] {
			return counts[kept[i]] > counts[kept[j]]
		}
		return kept[i] < kept[j]
	})

	v := &vocabulary{
		list:  append([]string{padToken, unkToken}, kept...),
		index: make(map[string]int, len(kept)+2),
	}
	for i, w := range v.list {
		v.index[w] = i
	}
	return v
}

func (v *vocabulary) encode(tokens []string, maxLen int) []int {
	return fit(tokens, maxLen, func(tok string) int {
		if i, ok := v.index[tok]; ok {
			return i
		}
		return unkIndex
	})
}

func (v *vocabulary) size() int { return len(v.list) }

func (v *vocabulary) words() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)
	// special tokens keep zero rows in a pretrained table
	out[padIndex], out[unkIndex] = "", ""
	return out
}

// hashVocabulary maps each token to one of a fixed number of buckets by the
// md5 of the token. No vocabulary pass over the data is needed.
type hashVocabulary struct {
	buckets int
}

func (h hashVocabulary) encode(tokens []string, maxLen int) []int {
	return fit(tokens, maxLen, func(tok string) int {
		sum := md5.Sum([]byte(tok))
		return 2 + int(binary.BigEndian.Uint64(sum[:8])%uint64(h.buckets))
	})
}

func (h hashVocabulary) size() int { return h.buckets + 2 }

func (h hashVocabulary) words() []string { return nil }

// fit truncates or right-pads to exactly maxLen indices.
func fit(tokens []string, maxLen int, lookup func(string) int) []int {
	out := make([]int, maxLen)
	for i := 0; i < maxLen && i < len(tokens); i++ {
		out[i] = lookup(tokens[i])
	}
	return out
}

// split shuffles examples with r and holds out testFrac of them, at least
// one for each side when there are two or more.
func split(r *rand.Rand, data []example, testFrac float64) (train, test []example) {
	shuffled := make([]example, len(data))
	for i, j := range r.Perm(len(data)) {
		shuffled[i] = data[j]
	}
	n := int(float64(len(data)) * testFrac)
	if n < 1 && len(data) > 1 {
		n = 1
	}
	if n >= len(data) {
		n = len(data) - 1
	}
	if n < 0 {
		n = 0
	}
	return shuffled[n:], shuffled[:n]
}
