package inspection

// EvidenceKind selects which evidence record an attachment belongs to.
type EvidenceKind string

const (
	EvidenceVisual  EvidenceKind = "visual"
	EvidenceFixture EvidenceKind = "fixtures"
	EvidenceDamage  EvidenceKind = "damage"
)

func (k EvidenceKind) IsValid() bool {
	switch k {
	case EvidenceVisual, EvidenceFixture, EvidenceDamage:
		return true
	}
	return false
}

// VisualEvidence holds photos of the item. Files may only be attached when
// the template marked visual evidence as applicable.
type VisualEvidence struct {
	Applicable bool        `json:"applicable"`
	Files      []MediaFile `json:"files"`
}

func NewVisualEvidence(applicable bool) VisualEvidence {
	return VisualEvidence{Applicable: applicable, Files: []MediaFile{}}
}

// Attach appends f and reports whether the variant accepted it.
func (v *VisualEvidence) Attach(f MediaFile) bool {
	if !v.Applicable {
		return false
	}
	v.Files = append(v.Files, f)
	return true
}

// FixtureCount records how many fixtures of a given type are present.
type FixtureCount struct {
	Applicable bool     `json:"applicable"`
	Count      int      `json:"count"`
	Type       string   `json:"type"`
	Options    []string `json:"options,omitempty"`
}

func NewFixtureCount(applicable bool, fixtureType string, options []string) FixtureCount {
	fc := FixtureCount{Applicable: applicable}
	if applicable {
		fc.Type = fixtureType
		fc.Options = append([]string(nil), options...)
	}
	return fc
}

// SetCount updates the count. Negative counts and non-applicable variants are
// rejected.
func (f *FixtureCount) SetCount(n int) bool {
	if !f.Applicable || n < 0 {
		return false
	}
	f.Count = n
	return true
}

// DamageNote tracks damage or wear found on the item. Trackable is fixed by
// the template; Present, Notes and Files are filled in by the inspector.
type DamageNote struct {
	Trackable bool        `json:"trackable"`
	Present   bool        `json:"present"`
	Notes     string      `json:"notes"`
	Files     []MediaFile `json:"files"`
}

func NewDamageNote(trackable bool) DamageNote {
	return DamageNote{Trackable: trackable, Files: []MediaFile{}}
}

func (d *DamageNote) Attach(f MediaFile) bool {
	if !d.Trackable {
		return false
	}
	d.Files = append(d.Files, f)
	return true
}
