package badger

// matchGlob reports whether key matches a Redis-style glob. '*' matches any
// run of bytes including '/', '?' one byte, '[...]' a class with optional
// '^' negation and 'a-z' ranges, and '\' escapes the next byte. Malformed
// classes are taken literally up to the end of the pattern, as Redis does.
func matchGlob(pattern, key string) bool {
	p, k := 0, 0
	// Backtracking point for the last '*'.
	star, starKey := -1, 0

	for k < len(key) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				for p < len(pattern) && pattern[p] == '*' {
					p++
				}
				if p == len(pattern) {
					return true
				}
				star, starKey = p, k
				continue
			case '?':
				p++
				k++
				continue
			case '[':
				if next, ok := matchClass(pattern, p, key[k]); ok {
					p = next
					k++
					continue
				}
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == key[k] {
					p += 2
					k++
					continue
				}
			default:
				if pattern[p] == key[k] {
					p++
					k++
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		starKey++
		p, k = star, starKey
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass matches c against the class starting at pattern[start] == '['.
// It returns the index after the class and whether c is a member.
func matchClass(pattern string, start int, c byte) (int, bool) {
	i := start + 1
	negate := i < len(pattern) && pattern[i] == '^'
	if negate {
		i++
	}

	match := false
	for i < len(pattern) && pattern[i] != ']' {
		switch {
		case pattern[i] == '\\' && i+1 < len(pattern):
			i++
			if pattern[i] == c {
				match = true
			}
			i++
		case i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']':
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				match = true
			}
			i += 3
		default:
			if pattern[i] == c {
				match = true
			}
			i++
		}
	}
	if i < len(pattern) {
		i++ // closing ']'
	}
	if negate {
		match = !match
	}
	return i, match
}
