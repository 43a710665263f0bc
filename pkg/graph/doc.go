// Package graph provides the immutable adjacency graph that districting
// chains run on.
//
// A [Graph] holds an ordered node set with per-node populations, an ordered
// edge set, and derived adjacency and incidence indices. It is built once
// through [New] (or decoded from its JSON wire format) and never mutated
// afterwards; all chain state lives in pkg/partition.
//
// # Wire Format
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "A", "population": 100}, {"id": "B", "population": 120}],
//	  "edges": [{"from": "A", "to": "B"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadFile("state.json")   // File → Graph
//	graph.WriteFile(g, "out.json")         // Graph → File
//	data, _ := graph.Marshal(g)            // Graph → []byte
//	g, _ = graph.Unmarshal(data)           // []byte → Graph
//
// # Edge Ordering
//
// Edges keep the order they were passed to [New] in. That order is load
// bearing: pkg/partition flags cut edges by edge index, and the flip proposer
// scans edges in index order to draw uniformly among cut edges.
//
// # Concurrency
//
// A Graph is safe for concurrent readers once constructed.
package graph
