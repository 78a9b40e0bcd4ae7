package main

// FindPriceAnomalies lists products whose final rate is not positive, usually a price
// that failed to parse, or above the listed rate.
func FindPriceAnomalies(c *Catalog) []PriceAnomaly {
	var anomalies []PriceAnomaly
	for _, g := range c.Groups {
		for i, p := range g.Products {
			key := ItemKey{Group: g.Name, Index: i}
			switch {
			case p.FinalRate <= 0:
				anomalies = append(anomalies, PriceAnomaly{Key: key, Product: p, Reason: "final rate is not positive"})
			case p.ListRate > 0 && p.FinalRate > p.ListRate:
				anomalies = append(anomalies, PriceAnomaly{Key: key, Product: p, Reason: "final rate above listed rate"})
			}
		}
	}
	return anomalies
}
