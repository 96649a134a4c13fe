package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// GoldenData represents a single test case in the golden file
type GoldenData struct {
	Series string  `json:"series"`
	Budget uint64  `json:"budget"`
	Value  float64 `json:"value"`
}

var series = []struct {
	name    string
	term    func(uint64) float64
	budgets []uint64
}{
	{"leibniz", leibniz, []uint64{3, 4, 5, 10, 16, 100, 1000, 1024}},
	{"basel", basel, []uint64{10, 100, 1000, 10000, 100000}},
}

func main() {
	outputDir := flag.String("out", "pkg/aitken/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "aitken_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	var data []GoldenData

	fmt.Println("Generating golden data...")

	for _, s := range series {
		for _, b := range s.budgets {
			data = append(data, GoldenData{
				Series: s.name,
				Budget: b,
				Value:  acceleratedSum(s.term, b),
			})
			fmt.Printf("Generated %s with budget %d\n", s.name, b)
		}
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// acceleratedSum computes every partial sum first and applies a single Aitken
// step to the last three. With a tolerance that never accepts, the library
// must arrive at the same value through its sliding window, so this serves
// as our "Oracle". budget must be at least 3.
func acceleratedSum(term func(uint64) float64, budget uint64) float64 {
	sums := make([]float64, budget)
	var s float64
	for i := range sums {
		s += term(uint64(i))
		sums[i] = s
	}
	x0, x1, x2 := sums[budget-3], sums[budget-2], sums[budget-1]
	dx := x1 - x0
	return x0 - (dx*dx)/(x2-x1-dx)
}

func leibniz(n uint64) float64 {
	if n%2 == 0 {
		return 4 / float64(2*n+1)
	}
	return -4 / float64(2*n+1)
}

func basel(n uint64) float64 {
	x := 1 / float64(n+1)
	return x * x
}
