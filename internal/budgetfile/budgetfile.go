// Package budgetfile reads and writes budgets as YAML documents:
//
//	budgets:
//	  - category: Food
//	    monthly: "500.00"
//	    annual: "6000.00"
//
// Amounts are strings so they survive the round trip without float noise.
// A missing annual amount defaults to twelve times the monthly one.
package budgetfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"budgetly/internal/core"
)

type File struct {
	Budgets []Entry `yaml:"budgets"`
}

type Entry struct {
	Category string `yaml:"category"`
	Monthly  string `yaml:"monthly"`
	Annual   string `yaml:"annual,omitempty"`
}

// Decode parses a budget document. Every entry is validated and the first
// problem of each entry is reported; a category may appear only once.
func Decode(r io.Reader) ([]core.Budget, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode budget file: %w", err)
	}

	var (
		out  []core.Budget
		errs []error
		seen = make(map[core.Category]bool)
	)
	for i, e := range f.Budgets {
		b, err := e.budget()
		if err != nil {
			errs = append(errs, fmt.Errorf("budget %d (%s): %w", i+1, e.Category, err))
			continue
		}
		if seen[b.Category] {
			errs = append(errs, fmt.Errorf("budget %d: duplicate category %s", i+1, b.Category))
			continue
		}
		seen[b.Category] = true
		out = append(out, b)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (e Entry) budget() (core.Budget, error) {
	cat, err := core.ParseCategory(e.Category)
	if err != nil {
		return core.Budget{}, err
	}
	monthly, err := core.ParseMoney(e.Monthly)
	if err != nil {
		return core.Budget{}, fmt.Errorf("monthly: %w", err)
	}
	annual := core.Money{Cents: monthly.Cents * 12}
	if e.Annual != "" {
		if annual, err = core.ParseMoney(e.Annual); err != nil {
			return core.Budget{}, fmt.Errorf("annual: %w", err)
		}
	}
	b := core.Budget{Category: cat, Monthly: monthly, Annual: annual}
	return b, b.Validate()
}

// Encode writes budgets in the format Decode reads.
func Encode(w io.Writer, budgets []core.Budget) error {
	f := File{Budgets: make([]Entry, 0, len(budgets))}
	for _, b := range budgets {
		f.Budgets = append(f.Budgets, Entry{
			Category: string(b.Category),
			Monthly:  b.Monthly.String(),
			Annual:   b.Annual.String(),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode budget file: %w", err)
	}
	return enc.Close()
}

// Load decodes the budget file at path.
func Load(path string) ([]core.Budget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open budget file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
