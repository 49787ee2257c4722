// Package aion is a polyglot compiler and runtime substrate: surface
// programs written in several source dialects are lifted into a single
// Semantic Intermediate Representation (SIR) — a typed, attributed,
// directed hypergraph carrying ownership, effects, hardware affinity,
// region/lifetime, and provenance metadata.
//
// 🚀 What is aion?
//
//	A core that optimizes, checks, proves, and schedules SIR graphs:
//
//	  • SIR hypergraph: vertices, hyperedges, topological order, clone/
//	    slice/merge, lossless serialization
//	  • Dependent + linear + effect type system with safety judgments
//	  • Region-based memory model with lifetime and borrow tracking
//	  • Effect lattice with static race and deadlock analyses
//	  • A small trusted proof system: synthesis, serialization, verification
//	  • Cross-language kernel-fusion optimizer, proof-preserving rewrites
//	  • Adaptive scheduler: topological dispatch, online profiling, migration
//
// ✨ Why aion?
//
//   - Auditable     — the proof verifier is small and exhaustively checkable
//   - Deterministic — topological order and schedules are reproducible
//     given stable identities and profiling data
//   - Synchronous   — the core itself is single-threaded; it describes
//     multi-device execution without launching it
//
// Backend code generation (textual LLVM IR, WebAssembly text), surface
// dialect front-ends, and an SMT solver implementation are all out of
// scope: the core exposes interfaces for these collaborators (see the
// emit package and proof.Solver) without shipping them.
//
// Everything is organized under one package per component:
//
//	sir/        — C1 hypergraph data model and builder
//	typesystem/ — C2 type system and typing judgments
//	region/     — C3 region & borrow model
//	effect/     — C4 effect lattice, race and deadlock analyses
//	proof/      — C5 proof terms, synthesizer, verifier
//	fusion/     — C6 kernel-fusion optimizer
//	scheduler/  — C7 adaptive scheduler
//	emit/       — C8 backend emit interfaces
//	diag/       — shared violation/error taxonomy
package aion
