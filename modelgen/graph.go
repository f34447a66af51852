// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package modelgen generates small finite-domain models — N-Queens,
// verbal arithmetic, graph coloring, set partitioning — used both as
// smoke tests for the engine and as worked examples of posting a model
// through package intvar. Grounded on github.com/irifrance/gini's gen
// package random-formula generators, retargeted from CNF literals to
// integer domains.
package modelgen

import "math/rand"

type edge struct{ a, b int }

// RandGraph builds a simple undirected random graph with n nodes and m
// edges, returned as an adjacency list: result[i] lists i's neighbors.
// Sampling is without replacement; if m exceeds the number of possible
// edges, RandGraph returns nil.
func RandGraph(rng *rand.Rand, n, m int) [][]int {
	if m > n*(n-1)/2 {
		return nil
	}
	adj := make([][]int, n)

	candidates := make([]edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			candidates = append(candidates, edge{i, j})
		}
	}

	for i := 0; i < m; i++ {
		last := len(candidates) - 1
		j := rng.Intn(len(candidates))
		e := candidates[j]
		adj[e.a] = append(adj[e.a], e.b)
		candidates[j], candidates[last] = candidates[last], candidates[j]
		candidates = candidates[:last]
	}
	for i, neighbors := range adj {
		for _, j := range neighbors {
			adj[j] = append(adj[j], i)
		}
	}
	return adj
}
