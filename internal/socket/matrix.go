package socket

import "fmt"

// Matrix is a symmetric boolean relation over socket ids 0..Size()-1.
type Matrix struct {
	n    int
	bits []bool
}

// NewMatrix creates an n×n matrix with nothing allowed.
func NewMatrix(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	return &Matrix{n: n, bits: make([]bool, n*n)}
}

// Size returns the number of socket ids covered.
func (m *Matrix) Size() int { return m.n }

// Allow marks a and b as compatible in both directions.
func (m *Matrix) Allow(a, b int) error {
	if !m.inRange(a) || !m.inRange(b) {
		return fmt.Errorf("socket: pair (%d,%d) outside matrix of size %d", a, b, m.n)
	}
	m.bits[a*m.n+b] = true
	m.bits[b*m.n+a] = true
	return nil
}

// Deny removes the pair in both directions.
func (m *Matrix) Deny(a, b int) {
	if !m.inRange(a) || !m.inRange(b) {
		return
	}
	m.bits[a*m.n+b] = false
	m.bits[b*m.n+a] = false
}

// Compatible reports whether a and b may meet. Ids outside the matrix never
// match.
func (m *Matrix) Compatible(a, b int) bool {
	if !m.inRange(a) || !m.inRange(b) {
		return false
	}
	return m.bits[a*m.n+b]
}

// Pairs returns every allowed pair with a <= b, row by row.
func (m *Matrix) Pairs() [][2]int {
	var out [][2]int
	for a := 0; a < m.n; a++ {
		for b := a; b < m.n; b++ {
			if m.bits[a*m.n+b] {
				out = append(out, [2]int{a, b})
			}
		}
	}
	return out
}

func (m *Matrix) inRange(id int) bool { return id >= 0 && id < m.n }

// IdentityMatrix allows every socket id to meet itself.
func IdentityMatrix(n int) *Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.bits[i*n+i] = true
	}
	return m
}
