// Command graphdemo builds a handful of example computation graphs and
// walks through reading and mutating them, printing what happens at each
// step. It exists to exercise the engine end to end; it is not part of
// the library's public surface.
package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/coregx/incremental"
)

func main() {
	demoBasicGraph()
	demoDiamond()
	demoDynamicTopology()
	demoConcurrentGraphBuild()
	demoCycle()
	fmt.Println("\n=== Demo Complete ===")
}

func demoBasicGraph() {
	fmt.Println("=== Phase 1: Basic graph ===")

	count := incremental.NewValue(5, incremental.WithName("count"))
	doubled := incremental.NewComputed(func() (int, error) {
		return count.Get() * 2, nil
	}, incremental.WithName("doubled"))

	v, err := doubled.Get()
	fatalIf(err)
	fmt.Printf("count=%d doubled=%d\n", count.Get(), v)

	fatalIf(count.Set(10))
	v, err = doubled.Get()
	fatalIf(err)
	fmt.Printf("after count.Set(10): doubled=%d\n", v)
}

func demoDiamond() {
	fmt.Println("\n=== Phase 2: Diamond dependency ===")

	a := incremental.NewValue(1, incremental.WithName("a"))
	left := incremental.NewComputed(func() (int, error) { return a.Get(), nil }, incremental.WithName("left"))
	right := incremental.NewComputed(func() (int, error) { return a.Get(), nil }, incremental.WithName("right"))
	bottom := incremental.NewComputed(func() (int, error) {
		return (left.Get() + right.Get()) % 2, nil
	}, incremental.WithName("bottom"))

	v, err := bottom.Get()
	fatalIf(err)
	fmt.Printf("bottom=%d (%s)\n", v, bottom)

	fatalIf(a.Set(0))
	v, err = bottom.Get()
	fatalIf(err)
	fmt.Printf("after a.Set(0): bottom=%d\n", v)
}

func demoDynamicTopology() {
	fmt.Println("\n=== Phase 3: Dynamic topology ===")

	cond := incremental.NewValue(true, incremental.WithName("cond"))
	x := incremental.NewValue(10, incremental.WithName("x"))
	y := incremental.NewValue(20, incremental.WithName("y"))
	out := incremental.NewComputed(func() (int, error) {
		if cond.Get() {
			return x.Get(), nil
		}
		return y.Get(), nil
	}, incremental.WithName("out"))

	v, err := out.Get()
	fatalIf(err)
	fmt.Printf("out=%d\n", v)

	fatalIf(y.Set(99))
	v, err = out.Get()
	fatalIf(err)
	fmt.Printf("after y.Set(99) (y untracked while cond=true): out=%d\n", v)

	fatalIf(cond.Set(false))
	v, err = out.Get()
	fatalIf(err)
	fmt.Printf("after cond.Set(false): out=%d\n", v)

	fatalIf(x.Set(11))
	v, err = out.Get()
	fatalIf(err)
	fmt.Printf("after x.Set(11) (x now untracked): out=%d\n", v)
}

// demoConcurrentGraphBuild builds several independent leaf/computed pairs
// concurrently. The engine itself is single-threaded and must not be
// touched from more than one goroutine at a time, so the graphs are wholly
// independent and only read back on the main goroutine. NewComputed draws
// each node's ID from an unsynchronized package-level counter, so those
// constructor calls are serialized with a mutex; NewValue touches no
// shared state and runs in parallel.
func demoConcurrentGraphBuild() {
	fmt.Println("\n=== Phase 4: Concurrent graph construction ===")

	const n = 8
	roots := make([]*incremental.ValueNode[int], n)
	var g errgroup.Group
	var mu sync.Mutex
	results := make([]*incremental.ComputedNode[int], n)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			root := incremental.NewValue(i)
			mu.Lock()
			squared := incremental.NewComputed(func() (int, error) {
				return root.Get() * root.Get(), nil
			})
			mu.Unlock()
			roots[i] = root
			results[i] = squared
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fatalIf(err)
	}

	for i, r := range results {
		v, err := r.Get()
		fatalIf(err)
		fmt.Printf("root[%d]=%d squared=%d\n", i, roots[i].Get(), v)
	}
}

func demoCycle() {
	fmt.Println("\n=== Phase 5: Cycle detection ===")

	var a, b *incremental.ComputedNode[int]
	a = incremental.NewComputed(func() (int, error) { return b.Get() }, incremental.WithName("a"))
	b = incremental.NewComputed(func() (int, error) { return a.Get() }, incremental.WithName("b"))

	_, err := a.Get()
	if incremental.IsCycle(err) {
		fmt.Printf("detected cycle as expected: %v\n", err)
	} else {
		fmt.Printf("expected a cycle error, got: %v\n", err)
	}

	// The rest of the graph is unaffected by a's failed read.
	leaf := incremental.NewValue(42)
	fmt.Printf("unrelated leaf still readable: %d\n", leaf.Get())
}

func fatalIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphdemo:", err)
		os.Exit(1)
	}
}
