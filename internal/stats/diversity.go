package stats

import (
	"errors"
	"fmt"

	"github.com/xrash/smetrics"

	"cgpkit/internal/genome"
)

var ErrAlphabetTooLarge = errors.New("too many distinct gene values for edit distance")

// Diversity is the mean pairwise edit distance between gene sequences, with
// unit insertion and deletion costs and a substitution cost of two. Gene
// values are mapped onto a shared byte alphabet, so at most 256 distinct
// values may occur across all sequences.
func Diversity(sequences [][]int) (float64, error) {
	if len(sequences) < 2 {
		return 0, nil
	}
	alphabet := make(map[int]byte)
	encoded := make([]string, len(sequences))
	for i, genes := range sequences {
		buf := make([]byte, len(genes))
		for g, v := range genes {
			symbol, ok := alphabet[v]
			if !ok {
				if len(alphabet) == 256 {
					return 0, fmt.Errorf("%w: more than 256 values", ErrAlphabetTooLarge)
				}
				symbol = byte(len(alphabet))
				alphabet[v] = symbol
			}
			buf[g] = symbol
		}
		encoded[i] = string(buf)
	}

	var total, pairs int
	for i := 0; i < len(encoded); i++ {
		for j := i + 1; j < len(encoded); j++ {
			total += smetrics.WagnerFischer(encoded[i], encoded[j], 1, 1, 2)
			pairs++
		}
	}
	return float64(total) / float64(pairs), nil
}

// PopulationDiversity is Diversity over the gene vectors of every chromosome.
func PopulationDiversity[T any](pop *genome.Population[T]) (float64, error) {
	sequences := make([][]int, pop.Len())
	for i := range sequences {
		sequences[i] = pop.Get(i).Genes()
	}
	return Diversity(sequences)
}
