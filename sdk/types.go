package codeit

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- Languages ---

// Language is one selectable language.
type Language struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Extension string `json:"extension"`
	Version   string `json:"version"`
}

// --- Sessions ---

// Session is the state of one editor session.
type Session struct {
	ID          string       `json:"id"`
	Language    string       `json:"language"`
	Source      string       `json:"source"`
	Stdin       string       `json:"stdin"`
	Output      string       `json:"output"`
	Result      *ExecResult  `json:"result"`
	Running     bool         `json:"running"`
	Annotations []Annotation `json:"annotations"`
	EditorTheme string       `json:"editor_theme"`
	// Error is set when a run produced no result.
	Error string `json:"error,omitempty"`
}

// ExecResult is the timing and exit status of the last run.
type ExecResult struct {
	// Time is in seconds.
	Time     float64 `json:"time"`
	Memory   int64   `json:"memory"`
	ExitCode int     `json:"code"`
	Signal   string  `json:"signal,omitempty"`
}

// Annotation marks an error line in the source.
type Annotation struct {
	Severity    string `json:"severity"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
	Message     string `json:"message"`
}

// File is a downloaded source file.
type File struct {
	Name    string
	Content []byte
}

// --- Theme ---

// ThemeResponse is returned by GET and PUT /theme.
type ThemeResponse struct {
	Theme       string `json:"theme"`
	EditorTheme string `json:"editor_theme"`
}

// --- Auth ---

// Me describes the client's login state.
type Me struct {
	Username string `json:"username"`
	LoggedIn bool   `json:"logged_in"`
	Theme    string `json:"theme,omitempty"`
}
