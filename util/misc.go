package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func JsonHash(s interface{}) string {
	bs, _ := json.Marshal(s)
	hash := sha256.Sum256(bs)
	return hex.EncodeToString(hash[:])
}

func CopyIntSlice(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func CopyFloatSlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// Reshape lays a flat vector out as rows of width cols.
func Reshape(values []float64, cols int) [][]float64 {
	if cols <= 0 {
		return nil
	}
	rows := make([][]float64, 0, (len(values)+cols-1)/cols)
	for start := 0; start < len(values); start += cols {
		end := start + cols
		if end > len(values) {
			end = len(values)
		}
		rows = append(rows, CopyFloatSlice(values[start:end]))
	}
	return rows
}

func ReshapeInts(values []int, cols int) [][]int {
	if cols <= 0 {
		return nil
	}
	rows := make([][]int, 0, (len(values)+cols-1)/cols)
	for start := 0; start < len(values); start += cols {
		end := start + cols
		if end > len(values) {
			end = len(values)
		}
		rows = append(rows, CopyIntSlice(values[start:end]))
	}
	return rows
}
