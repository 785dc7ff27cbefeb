package mca_test

import (
	"fmt"

	"github.com/vfc-go/mca/pkg/mca"
	"github.com/vfc-go/mca/pkg/mcaconfig"
)

// Example demonstrates that mode=ieee disables perturbation entirely,
// so the engine's result matches plain float64 arithmetic exactly.
func Example() {
	opts := mcaconfig.DefaultOptions()
	opts.Mode = "ieee"
	ctx, err := mcaconfig.New(opts)
	if err != nil {
		fmt.Println(err)
		return
	}

	engine := mca.New(ctx)
	fmt.Println(engine.AddFloat64(1.0, 2.0))
	fmt.Println(engine.MulFloat64(3.0, 4.0))

	// Output:
	// 3
	// 12
}
