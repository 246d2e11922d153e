package storage

import "strconv"

// placeholder returns the positional bind-parameter marker for the
// two dialects SQLStore supports: sqlite3 uses "?", postgres uses
// "$1", "$2", ...
func placeholder(dialect string, position int) string {
	if dialect == "postgres" {
		return "$" + strconv.Itoa(position)
	}
	return "?"
}

// placeholders returns n placeholders, comma-joined, starting at
// position 1.
func placeholders(dialect string, n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += placeholder(dialect, i)
	}
	return out
}

func stringSliceToArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
