package service

import (
	"strconv"
	"strings"
)

// Seats per row by row index: the first three rows are the widest and the
// rows from H onward the narrowest.
func seatsInRow(row int) int {
	switch {
	case row < 3:
		return 14
	case row < 7:
		return 12
	default:
		return 8
	}
}

// SeatCode is a parsed seat identifier such as "B7" or "AA3".
type SeatCode struct {
	Row    int // zero-based, A=0, Z=25, AA=26
	Number int // one-based column
}

// String renders the canonical form.
func (s SeatCode) String() string {
	return indexToRowLabel(s.Row) + strconv.Itoa(s.Number)
}

// ParseSeatCode parses a row label followed by a positive column number.
// Input is trimmed and case-insensitive.
func ParseSeatCode(raw string) (SeatCode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) || i > 3 {
		return SeatCode{}, ValidationError{Field: "selected_seats", Msg: "invalid seat code " + strconv.Quote(raw)}
	}
	row, ok := rowLabelToIndex(s[:i])
	if !ok {
		return SeatCode{}, ValidationError{Field: "selected_seats", Msg: "invalid seat code " + strconv.Quote(raw)}
	}
	num, err := strconv.Atoi(s[i:])
	if err != nil || num < 1 || s[i] == '0' || s[i] == '+' {
		return SeatCode{}, ValidationError{Field: "selected_seats", Msg: "invalid seat code " + strconv.Quote(raw)}
	}
	return SeatCode{Row: row, Number: num}, nil
}

// NormalizeSeatCodes parses every code, returns them in canonical form and
// drops repeats while keeping first-seen order.
func NormalizeSeatCodes(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, ValidationError{Field: "selected_seats", Msg: "no seats selected"}
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		sc, err := ParseSeatCode(r)
		if err != nil {
			return nil, err
		}
		code := sc.String()
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

// SeatLayout lists the seat codes of a screen with the given capacity in
// booking order: row by row, front to back, left to right.  The last row is
// truncated so the layout holds exactly capacity seats.
func SeatLayout(capacity uint32) []string {
	out := make([]string, 0, capacity)
	for row := 0; uint32(len(out)) < capacity; row++ {
		for n := 1; n <= seatsInRow(row) && uint32(len(out)) < capacity; n++ {
			out = append(out, SeatCode{Row: row, Number: n}.String())
		}
	}
	return out
}

// InLayout reports whether the seat exists on a screen of the given capacity.
func (s SeatCode) InLayout(capacity uint32) bool {
	if s.Number > seatsInRow(s.Row) {
		return false
	}
	before := 0
	for r := 0; r < s.Row; r++ {
		before += seatsInRow(r)
		if uint32(before) >= capacity {
			return false
		}
	}
	return uint32(before+s.Number) <= capacity
}

// indexToRowLabel converts a zero-based index to an alphabetical row label like A, B, AA.
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// rowLabelToIndex converts a row label like A or AA into its zero-based index.
func rowLabelToIndex(label string) (int, bool) {
	if label == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}
