package cpf

// Normalize strips everything except decimal digits.
func Normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func checkDigit(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (len(digits) + 1 - i)
	}
	mod := (sum * 10) % 11
	if mod == 10 {
		return 0
	}
	return mod
}

// Valid reports whether s is a well-formed CPF: exactly 11 digits after
// normalization, not a repeated single digit, and both mod-11 check digits
// matching.
func Valid(s string) bool {
	digits := Normalize(s)
	if len(digits) != 11 {
		return false
	}

	same := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	d1 := checkDigit(digits[:9])
	d2 := checkDigit(digits[:10])

	return d1 == int(digits[9]-'0') && d2 == int(digits[10]-'0')
}
