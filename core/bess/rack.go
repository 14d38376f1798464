package bess

// Rack owns an ordered set of packs. Incoming power is split equally and
// the rack SOC is the plain mean of pack means, not capacity-weighted.
type Rack struct {
	Packs []*Pack

	averageSOC float64
}

func newRack(packs []*Pack) *Rack {
	r := &Rack{Packs: packs}
	r.averageSOC = meanPackSOC(packs)
	return r
}

// Update distributes powerW equally across packs and refreshes the cached
// mean SOC.
func (r *Rack) Update(powerW, dtSeconds float64) {
	if len(r.Packs) == 0 {
		return
	}
	perPack := powerW / float64(len(r.Packs))
	total := 0.0
	for _, pk := range r.Packs {
		pk.Update(perPack, dtSeconds)
		total += pk.AverageSOC()
	}
	r.averageSOC = total / float64(len(r.Packs))
}

// AverageSOC returns the cached mean of pack SOC means.
func (r *Rack) AverageSOC() float64 { return r.averageSOC }

func meanPackSOC(packs []*Pack) float64 {
	if len(packs) == 0 {
		return 0
	}
	total := 0.0
	for _, pk := range packs {
		total += pk.AverageSOC()
	}
	return total / float64(len(packs))
}
