package effect_test

import (
	"testing"

	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

// TestLatticeLaws checks the four lattice laws of §8 invariant 4 over
// every pair of effects in the enumeration.
func TestLatticeLaws(t *testing.T) {
	all := effect.All()
	for _, a := range all {
		require.True(t, effect.Leq(a, a), "reflexivity: %s", a)
	}
	for _, a := range all {
		for _, b := range all {
			if effect.Leq(a, b) && effect.Leq(b, a) {
				require.Equal(t, a, b, "antisymmetry: %s vs %s", a, b)
			}
		}
	}
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				if effect.Leq(a, b) && effect.Leq(b, c) {
					require.True(t, effect.Leq(a, c), "transitivity: %s <= %s <= %s", a, b, c)
				}
			}
		}
	}
	for _, a := range all {
		for _, b := range all {
			j := effect.Join(a, b)
			require.True(t, effect.Leq(a, j), "join(%s,%s)=%s must be >= %s", a, b, j, a)
			require.True(t, effect.Leq(b, j), "join(%s,%s)=%s must be >= %s", a, b, j, b)
			m := effect.Meet(a, b)
			require.True(t, effect.Leq(m, a), "meet(%s,%s)=%s must be <= %s", a, b, m, a)
			require.True(t, effect.Leq(m, b), "meet(%s,%s)=%s must be <= %s", a, b, m, b)
		}
	}
}

func TestLeqMainChain(t *testing.T) {
	require.True(t, effect.Leq(effect.Pure, effect.Read))
	require.True(t, effect.Leq(effect.Read, effect.Write))
	require.True(t, effect.Leq(effect.Write, effect.ThreadSpawn))
	require.True(t, effect.Leq(effect.ThreadJoin, effect.ChannelSend))
	require.False(t, effect.Leq(effect.Write, effect.AtomicRead),
		"Write and AtomicRead sit on distinct branches above Read")
	require.False(t, effect.Leq(effect.AtomicRead, effect.Write),
		"the relation must not hold in either direction for incomparable effects")
}

func TestJoinAll(t *testing.T) {
	got := effect.JoinAll([]effect.Effect{effect.Read, effect.Write, effect.Pure})
	require.True(t, effect.Leq(effect.Read, got))
	require.True(t, effect.Leq(effect.Write, got))
	require.Equal(t, effect.Bottom(), effect.JoinAll(nil))
}

func TestCapabilityCanPerform(t *testing.T) {
	cap := effect.Capability{Effect: effect.Write}
	require.True(t, cap.CanPerform(effect.Read))
	require.True(t, cap.CanPerform(effect.Write))
	require.False(t, cap.CanPerform(effect.IO))
}

// buildRaceGraph builds scenario S3: two Store vertices to the same
// region as targets of a SIMD ParallelEdge, with no connecting effect
// edge.
func buildRaceGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph(sir.WithName("race"))
	s1 := sir.NewStore("store1").WithRegion("heap")
	s2 := sir.NewStore("store2").WithRegion("heap")
	require.NoError(t, g.AddVertex(s1))
	require.NoError(t, g.AddVertex(s2))
	require.NoError(t, g.AddEdge(sir.NewParallelEdge("p1", nil, []string{"store1", "store2"}, sir.SIMD, 4, 0, 0, sir.AffinityCPU)))
	return g
}

func TestAnalyzeRacesDetectsConcurrentWrites(t *testing.T) {
	g := buildRaceGraph(t)
	result := effect.AnalyzeRaces(g.AsEffectView())
	require.True(t, result.HasRaces)
	require.Len(t, result.RacePairs, 1)
	pair := result.RacePairs[0]
	require.ElementsMatch(t, []string{"store1", "store2"}, pair[:])
}

func TestAnalyzeRacesClearedByEffectOrdering(t *testing.T) {
	g := buildRaceGraph(t)
	require.NoError(t, g.AddEdge(sir.NewEffectEdge("eo1", []string{"store1"}, []string{"store2"}, "seq")))
	result := effect.AnalyzeRaces(g.AsEffectView())
	require.False(t, result.HasRaces)
}

// buildDeadlockGraph builds scenario S6: two ChannelRecv vertices each
// reachable from the other via graph successors.
func buildDeadlockGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph(sir.WithName("deadlock"))
	r1 := sir.NewApply("recv1", "chan_recv")
	r1.Metadata.Effects = []effect.Effect{effect.ChannelRecv}
	r2 := sir.NewApply("recv2", "chan_recv")
	r2.Metadata.Effects = []effect.Effect{effect.ChannelRecv}
	require.NoError(t, g.AddVertex(r1))
	require.NoError(t, g.AddVertex(r2))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("c1", []string{"recv1"}, []string{"recv2"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("c2", []string{"recv2"}, []string{"recv1"})))
	return g
}

func TestAnalyzeDeadlocksDetectsCycle(t *testing.T) {
	g := buildDeadlockGraph(t)
	result := effect.AnalyzeDeadlocks(g.AsEffectView())
	require.True(t, result.HasDeadlock)
	require.NotEmpty(t, result.Cycles)
	require.Contains(t, result.Cycles[0], "recv1")
	require.Contains(t, result.Cycles[0], "recv2")
}

func TestAnalyzeDeadlocksAcyclicIsSafe(t *testing.T) {
	g := sir.NewGraph(sir.WithName("no-deadlock"))
	r1 := sir.NewApply("recv1", "chan_recv")
	r1.Metadata.Effects = []effect.Effect{effect.ChannelRecv}
	require.NoError(t, g.AddVertex(r1))
	result := effect.AnalyzeDeadlocks(g.AsEffectView())
	require.False(t, result.HasDeadlock)
}

func TestCheckerFlagsMissingAnnotation(t *testing.T) {
	g := sir.NewGraph(sir.WithName("unannotated"))
	v := sir.NewPhi("phi1")
	require.NoError(t, g.AddVertex(v))
	checker := effect.NewChecker()
	_, warnings := checker.Check(g.AsEffectView())
	require.NotEmpty(t, warnings)
}
