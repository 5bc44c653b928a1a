package language

// Versions maps a language id to the fixed runtime version requested from
// the execution service. There is no negotiation: a missing entry means the
// language cannot be run.
type Versions map[string]string

// DefaultVersions returns a fresh copy of the built-in version table.
func DefaultVersions() Versions {
	return Versions{
		"python": "3.10.0",
		"java":   "15.0.2",
		"cpp":    "10.2.0",
	}
}

// Version returns the pinned version for id, or "" if none is configured.
func (v Versions) Version(id string) string {
	return v[id]
}

// judge0IDs are the closest Judge0 CE runtimes for each language. Judge0
// selects the runtime by id alone, so the pinned versions above do not
// apply there and its compilers are older.
var judge0IDs = map[string]int{
	"python": 71, // Python 3.8.1
	"java":   62, // Java OpenJDK 13.0.1
	"cpp":    54, // C++ GCC 9.2.0
}

// Judge0ID returns the Judge0 CE numeric language id for id.
func Judge0ID(id string) (int, bool) {
	n, ok := judge0IDs[id]
	return n, ok
}
