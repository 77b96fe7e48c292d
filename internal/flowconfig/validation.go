package flowconfig

import "github.com/rgalloway/flowkit/pkg/flowerrors"

// validateKindShape checks the same kind-by-kind operand shape the Builder's
// Do* methods enforce, so a malformed document is rejected at parse time
// rather than surfacing as a Build error once resolved.
func validateKindShape(a *Activity) error {
	switch a.Kind {
	case "once":
		if a.Uses == "" && a.Pipeline == nil {
			return flowerrors.NewInvalidSignature(a.Name, "once activity requires uses or pipeline")
		}
		if a.Predicate != "" {
			return flowerrors.NewInvalidSignature(a.Name, "once activity must not set predicate")
		}
	case "while", "until", "if":
		if a.Predicate == "" {
			return flowerrors.NewInvalidSignature(a.Name, a.Kind+" activity requires predicate")
		}
		if a.Uses == "" && a.Pipeline == nil {
			return flowerrors.NewInvalidSignature(a.Name, a.Kind+" activity requires uses or pipeline")
		}
	case "split":
		if a.Splitter == "" || a.Rejoiner == "" {
			return flowerrors.NewInvalidSignature(a.Name, "split activity requires splitter and rejoiner")
		}
		if a.Uses == "" && a.Pipeline == nil {
			return flowerrors.NewInvalidSignature(a.Name, "split activity requires uses or pipeline")
		}
	case "break", "continue":
		if a.Predicate == "" {
			return flowerrors.NewInvalidSignature(a.Name, a.Kind+" activity requires predicate")
		}
		if a.Uses != "" || a.Pipeline != nil {
			return flowerrors.NewInvalidSignature(a.Name, a.Kind+" activity must not set uses or pipeline")
		}
	}
	if a.Uses != "" && a.Pipeline != nil {
		return flowerrors.NewInvalidSignature(a.Name, a.Kind+" activity must set only one of uses or pipeline")
	}
	return nil
}
