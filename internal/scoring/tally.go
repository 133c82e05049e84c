package scoring

// TallyGroup is a raw stroke count broken into grouped units. Each
// full unit of five renders as four parallel marks closed by a
// diagonal; the remainder renders as loose marks. Capped categories
// (paired crossing marks) consume the same counts, so no rendering
// scheme needs to re-derive raw data.
type TallyGroup struct {
	Units     int `json:"units"`
	Remainder int `json:"remainder"`
}

// Group converts a raw stroke count into grouped units of five.
// Negative counts are treated as zero.
func Group(count int) TallyGroup {
	if count < 0 {
		count = 0
	}
	return TallyGroup{Units: count / 5, Remainder: count % 5}
}

// Total returns the raw count the group was derived from.
func (g TallyGroup) Total() int {
	return g.Units*5 + g.Remainder
}
