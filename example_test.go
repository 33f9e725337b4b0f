package substrate_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/substrate"
	"github.com/hupe1980/substrate/arena"
	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/pool"
)

type enemy struct {
	pool.Slot
	Health int
}

// Example demonstrates a runtime with one arena, a pool and a map.
func Example() {
	rt, err := substrate.New(
		substrate.WithLogger(diag.Nop()),
		substrate.WithArena("frame", 1<<20),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	frame, _ := rt.Arena("frame")
	positions := arena.NewScratch[float32](frame, 3)
	positions.Items[0] = 1.5
	fmt.Println(len(positions.Items), positions.Items[0])
	positions.Release()

	enemies := substrate.NewPools[enemy](rt, 128)
	e := enemies.GetVacant()
	e.Health = 100
	fmt.Println(enemies.Get(e.SlotID()).Health)

	names := substrate.NewMap[uint32, string](rt)
	names.Insert(e.SlotID(), "grunt")
	name, _ := names.Find(e.SlotID())
	fmt.Println(name)

	// Output:
	// 3 1.5
	// 100
	// grunt
}
