package reconcile

// Diff lists the attributes whose desired value differs from the observed one,
// in the order they were compared.
type Diff struct {
	Fields []string
}

func (d *Diff) Add(field string) {
	d.Fields = append(d.Fields, field)
}

// Compare records field when want was supplied (non-empty) and differs from have.
func (d *Diff) Compare(field, want, have string) {
	if want != "" && want != have {
		d.Add(field)
	}
}

func (d Diff) Has(field string) bool {
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (d Diff) Empty() bool {
	return len(d.Fields) == 0
}
