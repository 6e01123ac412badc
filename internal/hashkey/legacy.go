package hashkey

import (
	"math"
	"strconv"
	"strings"
)

// ColumnType is the type a column of raw CSV cells takes in the legacy
// loader's data frame. It decides how each cell is rendered in concat mode.
type ColumnType int

const (
	// ColumnObject keeps cells verbatim.
	ColumnObject ColumnType = iota

	// ColumnInt holds integers only, with no missing cell.
	ColumnInt

	// ColumnFloat holds numbers, or integers with missing cells.
	ColumnFloat

	// ColumnBool holds True/False literals only.
	ColumnBool
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInt:
		return "int64"
	case ColumnFloat:
		return "float64"
	case ColumnBool:
		return "bool"
	default:
		return "object"
	}
}

// missingCells are the cell values the legacy reader treated as missing.
var missingCells = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

var boolCells = map[string]bool{
	"True": true, "TRUE": true, "true": true,
	"False": false, "FALSE": false, "false": false,
}

// InferColumnType infers the type of a column from all of its cells.
//
// A column without any present cell is float, like an all-missing column of
// the legacy frame.
func InferColumnType(cells []string) ColumnType {
	ints, floats, bools, present := true, true, true, 0
	hasMissing := false

	for _, c := range cells {
		if missingCells[c] {
			hasMissing = true
			continue
		}
		present++
		s := strings.TrimSpace(c)
		if ints {
			if _, ok := parseLegacyInt(s); !ok {
				ints = false
			}
		}
		if floats {
			if _, ok := parseLegacyFloat(s); !ok {
				floats = false
			}
		}
		if bools {
			if _, ok := boolCells[s]; !ok {
				bools = false
			}
		}
	}

	switch {
	case present == 0:
		return ColumnFloat
	case ints && !hasMissing:
		return ColumnInt
	case floats:
		return ColumnFloat
	case bools:
		return ColumnBool
	default:
		return ColumnObject
	}
}

// LegacyToken renders cell as the legacy loader's str() did for a value of a
// column of type t. Missing cells render as "nan".
func LegacyToken(t ColumnType, cell string) string {
	if missingCells[cell] {
		return concatNullToken
	}
	s := strings.TrimSpace(cell)
	switch t {
	case ColumnInt:
		if n, ok := parseLegacyInt(s); ok {
			return strconv.FormatInt(n, 10)
		}
	case ColumnFloat:
		if f, ok := parseLegacyFloat(s); ok {
			return PythonFloat(f)
		}
	case ColumnBool:
		if b, ok := boolCells[s]; ok {
			if b {
				return "True"
			}
			return "False"
		}
	}
	return cell
}

// PythonFloat formats f like Python's repr of a float: shortest round-trip
// digits, always with a decimal point, and scientific notation outside
// 1e-4 <= |f| < 1e16.
func PythonFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func parseLegacyInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseLegacyFloat(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
