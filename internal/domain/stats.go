package domain

// Stats aggregates a filtered trip set for the summary card.
// An empty set yields the zero value.
type Stats struct {
	// Trips is the number of trips in the set.
	Trips int `json:"trips"`
	// Distance is the summed derived distance across the set.
	Distance int `json:"distance"`
	// Earnings is the summed earnings across trips of every kind;
	// personal trips contribute zero.
	Earnings int `json:"earnings"`
	// Packages is the summed package count across work trips only.
	Packages int `json:"packages"`
}

// Aggregate computes Stats over the given trips.
// Sums use the derived accessors, so distance can never disagree with the
// odometer readings and personal trips can never leak packages or earnings.
func Aggregate(trips []Trip) Stats {
	var s Stats
	for _, t := range trips {
		s.Trips++
		s.Distance += t.Distance()
		s.Earnings += t.Earnings()
		if t.Kind == KindWork {
			s.Packages += t.Packages()
		}
	}
	return s
}
