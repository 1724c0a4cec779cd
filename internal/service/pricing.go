package service

// Row-based surcharges in whole currency units.  Rows A–C are sold at the
// show's base price, D–G carry the mid surcharge and H onward the rear one.
const (
	midRowStart  = 3
	rearRowStart = 7

	midRowSurcharge  = 100
	rearRowSurcharge = 200
)

// SeatPrice returns the price of one seat on a show with the given base.
func SeatPrice(base uint32, code string) (uint32, error) {
	sc, err := ParseSeatCode(code)
	if err != nil {
		return 0, err
	}
	return priceForRow(base, sc.Row), nil
}

func priceForRow(base uint32, row int) uint32 {
	switch {
	case row < midRowStart:
		return base
	case row < rearRowStart:
		return base + midRowSurcharge
	default:
		return base + rearRowSurcharge
	}
}

// TotalPrice prices every seat and returns the sum together with the per
// seat prices in input order.
func TotalPrice(base uint32, codes []string) (uint32, []uint32, error) {
	prices := make([]uint32, len(codes))
	var total uint32
	for i, c := range codes {
		p, err := SeatPrice(base, c)
		if err != nil {
			return 0, nil, err
		}
		prices[i] = p
		total += p
	}
	return total, prices, nil
}
