package forms

// Strength is a password tier. Tiers from Weak to Strong equal the number
// of checks passed.
type Strength int

const (
	VeryWeak Strength = iota + 1
	Weak
	Medium
	Strong
	VeryStrong
)

// Tier folds a check count into a strength tier. Zero and one check are
// both very weak.
func Tier(checks int) Strength {
	switch {
	case checks <= 1:
		return VeryWeak
	case checks >= 5:
		return VeryStrong
	default:
		return Strength(checks)
	}
}

func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "Very weak password"
	case Weak:
		return "Weak password"
	case Medium:
		return "Medium password"
	case Strong:
		return "Strong password"
	case VeryStrong:
		return "Very strong password"
	default:
		return ""
	}
}

// Class is the CSS modifier of the strength meter.
func (s Strength) Class() string {
	switch s {
	case Medium:
		return "medium"
	case Strong, VeryStrong:
		return "strong"
	default:
		return "weak"
	}
}

// PasswordChecks counts the satisfied character-class checks: length of
// at least 8, lowercase, uppercase, digit, and any other rune.
func PasswordChecks(pw string) int {
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	n := 0
	for _, ok := range []bool{len([]rune(pw)) >= 8, lower, upper, digit, symbol} {
		if ok {
			n++
		}
	}
	return n
}

// PasswordStrength classifies pw.
func PasswordStrength(pw string) Strength {
	return Tier(PasswordChecks(pw))
}
