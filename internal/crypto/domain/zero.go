package domain

// Zero overwrites b with zeros. Derived keys are zeroed as soon as the single
// encrypt or decrypt call they serve returns.
func Zero(b []byte) {
	clear(b)
}
