package domain

import "sync"

// rowCache memoizes the materialized rows of a result. Results are shared
// between concurrent requests once registered, so generation runs once.
type rowCache struct {
	once sync.Once
	rows [][]any
	err  error
}

func (c *rowCache) load(gen func() ([][]any, error)) ([][]any, error) {
	c.once.Do(func() {
		c.rows, c.err = gen()
	})
	return c.rows, c.err
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Float returns a pointer to v, for building optional statistics.
func Float(v float64) *float64 {
	return &v
}
