package utils

import "math"

// Round arredonda f para o número de casas decimais pedido; valores
// monetários dos conectores usam duas casas
func Round(f float64, places int) float64 {
	if f == 0 || places < 0 {
		return f
	}

	scale := math.Pow10(places)
	return math.Round(f*scale) / scale
}
