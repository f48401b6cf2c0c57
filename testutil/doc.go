// Package testutil provides shared test helpers for the cyclicbuffer packages.
//
// # Test Data
//
// RandomInts produces reproducible pseudo-random data from a fixed seed, so a failing
// buffer test can be replayed exactly:
//
//	data := testutil.RandomInts(testutil.RandomDataLength, testutil.DefaultSeed)
//
// Sequence produces ascending ints, handy when the expected order after a rotation or
// overwrite has to be spelled out by hand.
//
// # Mocks
//
// MockProcessor records what a worker pool handed to it and can inject failures:
//
//	proc := testutil.NewMockProcessor[int]()
//	proc.Fail = func(v int) error {
//	    if v%2 == 0 {
//	        return errors.New("even")
//	    }
//	    return nil
//	}
//	pool, err := worker.NewPool(2, 10, proc.Process)
package testutil
