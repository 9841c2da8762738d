// Package ga implements the genetic algorithm that plans the hourly battery
// and EV power of a site over a 24-hour horizon.
//
// A candidate plan is encoded as a Genome of 48 fixed-point fields. The
// CostModel simulates the storage state of charge hour by hour and returns
// the net energy cost plus soft-constraint penalties. Engine evolves a
// Population through roulette selection, single-point crossover and bit-flip
// mutation, keeping the best plan ever seen outside of the population.
package ga
