package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

func ExampleIsPowerOfTwo() {
	fmt.Println(core.IsPowerOfTwo(2048), core.IsPowerOfTwo(3000), core.NextPowerOfTwo(3000))
	// Output:
	// true false 4096
}

func ExampleClampUnit() {
	fmt.Println(core.ClampUnit(-0.2), core.ClampUnit(0.5), core.ClampUnit(1.7))
	// Output:
	// 0 0.5 1
}
