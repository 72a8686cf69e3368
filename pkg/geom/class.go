package geom

import "fmt"

// Class is the dimensionality class of a point set, derived from its
// convex hull.
type Class int

const (
	Volumetric Class = iota // hull encloses non-zero volume
	Coplanar                // hull volume is zero within precision
	Collinear               // coplanar, and hull vertices spread along one line
)

func (c Class) String() string {
	switch c {
	case Volumetric:
		return "volumetric"
	case Coplanar:
		return "coplanar"
	case Collinear:
		return "collinear"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// IsCoplanar reports whether the class is Coplanar or Collinear.
// A collinear set is always coplanar.
func (c Class) IsCoplanar() bool {
	return c == Coplanar || c == Collinear
}

// IsCollinear reports whether the class is Collinear.
func (c Class) IsCollinear() bool {
	return c == Collinear
}

// MarshalText encodes the class by name.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name written by MarshalText.
func (c *Class) UnmarshalText(b []byte) error {
	switch string(b) {
	case "volumetric":
		*c = Volumetric
	case "coplanar":
		*c = Coplanar
	case "collinear":
		*c = Collinear
	default:
		return fmt.Errorf("geom: unknown class %q", b)
	}
	return nil
}
