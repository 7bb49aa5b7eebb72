package genome

import (
	"sort"

	"cgpkit/internal/resources"
)

// Population is a fixed-size set of chromosomes sharing one topology.
type Population[T any] struct {
	res         *resources.Resources[T]
	chromosomes []*Chromosome[T]
}

func NewPopulation[T any](res *resources.Resources[T]) *Population[T] {
	p := &Population[T]{res: res, chromosomes: make([]*Chromosome[T], res.PopulationSize())}
	for i := range p.chromosomes {
		p.chromosomes[i] = NewChromosome(res)
	}
	return p
}

// NewPopulationFrom fills a population with copies of parent.
func NewPopulationFrom[T any](parent *Chromosome[T]) *Population[T] {
	res := parent.res
	p := &Population[T]{res: res, chromosomes: make([]*Chromosome[T], res.PopulationSize())}
	for i := range p.chromosomes {
		p.chromosomes[i] = NewChromosomeFrom(parent)
	}
	return p
}

func (p *Population[T]) Resources() *resources.Resources[T] { return p.res }
func (p *Population[T]) Len() int { return len(p.chromosomes) }
func (p *Population[T]) Get(index int) *Chromosome[T] { return p.chromosomes[index] }

// CopyChromosome copies the genes of chromosome from into chromosome to.
func (p *Population[T]) CopyChromosome(from, to int) {
	if from == to {
		return
	}
	p.chromosomes[to].CopyGenes(p.chromosomes[from])
}

// Reinitialise draws fresh random genes for every chromosome.
func (p *Population[T]) Reinitialise() {
	for _, c := range p.chromosomes {
		c.ReinitialiseConnections()
	}
}

// Sort orders the population so the best chromosome is last under the
// resources' orientation. Equal fitness keeps the current order.
func (p *Population[T]) Sort() {
	lower := p.res.Orientation() == resources.LowerIsBetter
	sort.SliceStable(p.chromosomes, func(i, j int) bool {
		if lower {
			return p.chromosomes[i].fitness > p.chromosomes[j].fitness
		}
		return p.chromosomes[i].fitness < p.chromosomes[j].fitness
	})
}

// Fittest returns the index of the best chromosome, the first one on ties.
func (p *Population[T]) Fittest() int {
	best := 0
	for i := 1; i < len(p.chromosomes); i++ {
		if p.res.Orientation().Better(p.chromosomes[i].fitness, p.chromosomes[best].fitness) {
			best = i
		}
	}
	return best
}
