package fusion_test

import (
	"testing"

	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/fusion"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func buildTwoKernelGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph()

	grid, block := [3]int{16, 16, 1}, [3]int{16, 16, 1}
	k1 := sir.NewKernelLaunch("k1", grid, block)
	k1.Metadata.Affinity = sir.AffinityGPU
	k1.Metadata.Effects = []effect.Effect{effect.Read}
	k2 := sir.NewKernelLaunch("k2", grid, block)
	k2.Metadata.Affinity = sir.AffinityGPU
	k2.Metadata.Effects = []effect.Effect{effect.Write}

	require.NoError(t, g.AddVertex(k1))
	require.NoError(t, g.AddVertex(k2))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("df1", []string{"k1"}, []string{"k2"})))
	return g
}

func TestKernelFusionMergesCompatibleLaunches(t *testing.T) {
	g := buildTwoKernelGraph(t)
	result := fusion.Optimize(g, nil)

	var kernels []*sir.Vertex
	for _, v := range result.Graph.Vertices() {
		if v.VType == sir.KernelLaunch {
			kernels = append(kernels, v)
		}
	}
	require.Len(t, kernels, 1)
	require.GreaterOrEqual(t, result.SpeedupEstimate, 2.0)
	require.ElementsMatch(t, []effect.Effect{effect.Read, effect.Write}, kernels[0].Metadata.Effects)
}

func TestOptimizeIsIdempotentOnAlreadyFusedGraph(t *testing.T) {
	g := buildTwoKernelGraph(t)
	first := fusion.Optimize(g, nil)
	second := fusion.Optimize(first.Graph, nil)

	require.Empty(t, second.FusedVertexIDs)
	require.InDelta(t, 1.0, second.SpeedupEstimate, 0.0001)
}

func TestOptimizeWithoutPatternsReturnsGraphUnchanged(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewConst("c1", 1)))

	result := fusion.Optimize(g, nil)
	require.Len(t, result.Graph.Vertices(), 1)
	require.Equal(t, 1.0, result.SpeedupEstimate)
}

func TestDetectMemoryCoalescingRequiresFourLoads(t *testing.T) {
	g := sir.NewGraph()
	for i := 0; i < 3; i++ {
		v := sir.NewLoad(string(rune('a' + i)))
		v.Metadata.Region = "heap"
		require.NoError(t, g.AddVertex(v))
	}
	require.Empty(t, fusion.Detect(g))

	v := sir.NewLoad("d")
	v.Metadata.Region = "heap"
	require.NoError(t, g.AddVertex(v))
	patterns := fusion.Detect(g)
	require.Len(t, patterns, 1)
	require.Equal(t, fusion.MemoryCoalescing, patterns[0].Kind)
}

func TestFuseWithZeroCopyBypassesSameRegionTransfer(t *testing.T) {
	g := sir.NewGraph()
	src := sir.NewLoad("src")
	src.Metadata.Region = "heap"
	dst := sir.NewStore("dst")
	dst.Metadata.Region = "heap"
	xfer := sir.NewApply("memcpy1", "memcpy")

	require.NoError(t, g.AddVertex(src))
	require.NoError(t, g.AddVertex(xfer))
	require.NoError(t, g.AddVertex(dst))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"src"}, []string{"memcpy1"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"memcpy1"}, []string{"dst"})))

	optimized := fusion.FuseWithZeroCopy(g)
	require.Len(t, optimized.Vertices(), 2)
	for _, v := range optimized.Vertices() {
		require.NotEqual(t, sir.Apply, v.VType)
	}
}
