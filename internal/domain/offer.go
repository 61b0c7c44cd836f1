package domain

// Offer is a row of the externally managed offer registry. The service only
// reads it: lifecycle, destinations and activation are owned elsewhere.
type Offer struct {
	Slug   string
	URL    string
	Active bool
}

// Available reports whether the offer may be redirected to.
func (o *Offer) Available() bool {
	return o != nil && o.Active
}
