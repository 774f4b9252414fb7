package util

import "fmt"

var sizeUnits = []string{"KB", "MB", "GB", "TB"}

// Human formats a byte count with binary units, e.g. "2.00 KB".
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n)
	unit := ""
	for _, u := range sizeUnits {
		v /= 1024
		unit = u
		if v < 1024 {
			break
		}
	}

	return fmt.Sprintf("%.2f %s", v, unit)
}
