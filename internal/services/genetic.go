package services

import (
	"math/rand"
	"sort"
	"time"

	"weekly-route-service/internal/domain"
)

// Optimizer plans a closed delivery tour over a set of stops using a
// genetic algorithm.
//
// The algorithm evolves permutations of the stop list for a fixed number of
// generations, keeping the top fifth of each generation unchanged and
// refilling the population through ordered crossover plus occasional swap
// mutation. It is an approximation heuristic: the result is always a valid
// tour visiting every stop exactly once, with no optimality guarantee.
type Optimizer struct {
	Generations    int
	PopulationSize int

	rng *rand.Rand
}

const (
	// Probability of applying a swap mutation to a freshly bred child.
	mutationRate = 0.2
	// Fraction of each generation carried over unchanged.
	eliteDivisor = 5
)

// NewOptimizer builds an Optimizer. A nil rng falls back to a time-seeded
// source; tests inject a seeded one for deterministic output.
func NewOptimizer(generations, populationSize int, rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Optimizer{
		Generations:    generations,
		PopulationSize: populationSize,
		rng:            rng,
	}
}

// Optimize returns a closed tour starting and ending at the depot and
// visiting every stop exactly once. An empty stop list degenerates to
// [depot, depot].
func (o *Optimizer) Optimize(stops []domain.Stop, depot domain.Depot) []domain.RoutePoint {
	if len(stops) == 0 {
		return []domain.RoutePoint{domain.DepotPoint(depot), domain.DepotPoint(depot)}
	}

	n := len(stops)

	population := make([][]int, 0, o.PopulationSize)
	for i := 0; i < o.PopulationSize; i++ {
		population = append(population, o.rng.Perm(n))
	}

	for gen := 0; gen < o.Generations; gen++ {
		scored := o.rank(population, stops, depot)

		next := make([][]int, 0, o.PopulationSize)
		for _, s := range scored[:o.PopulationSize/eliteDivisor] {
			next = append(next, s.route)
		}

		// Parents are drawn uniformly from the whole scored population,
		// not just the elites.
		for len(next) < o.PopulationSize {
			p1 := scored[o.rng.Intn(len(scored))].route
			p2 := scored[o.rng.Intn(len(scored))].route
			child := o.crossover(p1, p2)
			if o.rng.Float64() < mutationRate {
				o.mutate(child)
			}
			next = append(next, child)
		}

		population = next
	}

	best := o.rank(population, stops, depot)[0].route

	tour := make([]domain.RoutePoint, 0, n+2)
	tour = append(tour, domain.DepotPoint(depot))
	for _, idx := range best {
		tour = append(tour, domain.StopPoint(stops[idx]))
	}
	tour = append(tour, domain.DepotPoint(depot))

	return tour
}

type scoredRoute struct {
	route []int
	score float64
}

// rank sorts the population by fitness descending. Fitness is the
// reciprocal of total tour length, so shorter tours rank first.
func (o *Optimizer) rank(population [][]int, stops []domain.Stop, depot domain.Depot) []scoredRoute {
	scored := make([]scoredRoute, 0, len(population))
	for _, route := range population {
		scored = append(scored, scoredRoute{route: route, score: 1 / o.tourLength(route, stops, depot)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

// tourLength sums depot->first, consecutive stop legs, and last->depot.
func (o *Optimizer) tourLength(route []int, stops []domain.Stop, depot domain.Depot) float64 {
	dist := 0.0
	prev := depot.Coords
	for _, idx := range route {
		dist += domain.Distance(prev, stops[idx].Coords)
		prev = stops[idx].Coords
	}
	dist += domain.Distance(prev, depot.Coords)
	return dist
}

// crossover copies a random contiguous slice [start, end) of parent a, then
// appends every stop of parent b, in b's order, that the child does not
// already contain. The child is always a full permutation.
func (o *Optimizer) crossover(a, b []int) []int {
	start := o.rng.Intn(len(a))
	end := start + o.rng.Intn(len(a)-start)

	child := make([]int, 0, len(a))
	used := make([]bool, len(a))
	for _, idx := range a[start:end] {
		child = append(child, idx)
		used[idx] = true
	}
	for _, idx := range b {
		if !used[idx] {
			child = append(child, idx)
			used[idx] = true
		}
	}
	return child
}

// mutate swaps two uniformly random positions in place.
func (o *Optimizer) mutate(route []int) {
	i := o.rng.Intn(len(route))
	j := o.rng.Intn(len(route))
	route[i], route[j] = route[j], route[i]
}
